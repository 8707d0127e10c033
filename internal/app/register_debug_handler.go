// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/pressure_computer/internal/env"
	"github.com/relabs-tech/pressure_computer/internal/sensors"
	"github.com/relabs-tech/pressure_computer/internal/sensors/rsc"
)

// RegisterDebugger is the sensor access the debug tool needs.
// *sensors.PressureManager implements it.
type RegisterDebugger interface {
	Read() (env.Sample, error)
	Calibration() (rsc.Calibration, float64, error)
	Settings() (rsc.Mode, uint8, error)
	SetMode(rsc.Mode) error
	SetSampleRateDivider(uint8) error
	ReadEEPROM(addr uint16, n int) ([]byte, error)
	DumpEEPROM() ([]byte, error)
	Reset() error
}

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn *websocket.Conn
	mgr  RegisterDebugger
}

// Response types
type RegisterResponse struct {
	Type        string                 `json:"type"`             // "register_data", "register_map", "calibration", "status", "error"
	Device      string                 `json:"device,omitempty"` // "eeprom" or "ads1220"
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	Mode        string                 `json:"mode,omitempty"`
	TempSRD     *uint8                 `json:"temp_srd,omitempty"`
	Calibration *rsc.Calibration       `json:"calibration,omitempty"`
	UnitScale   float64                `json:"unit_scale,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
}

// EEPROMExportFile is the JSON structure of an exported EEPROM image.
type EEPROMExportFile struct {
	Version      int               `json:"version"`
	SerialNumber string            `json:"serial_number"`
	Timestamp    string            `json:"timestamp"`
	Image        string            `json:"image"`  // hex, 512 bytes
	Fields       map[string]string `json:"fields"` // field name -> hex bytes
}

// NewRegisterDebugHandler returns the WebSocket handler of the debug tool.
func NewRegisterDebugHandler(mgr RegisterDebugger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("register_debug: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		session := &RegisterDebugSession{Conn: conn, mgr: mgr}

		// Send the EEPROM map on connection
		if err := session.sendRegisterMap("eeprom"); err != nil {
			log.Printf("register_debug: error sending register map: %v", err)
			return
		}

		for {
			var rawMsg map[string]interface{}
			if err := conn.ReadJSON(&rawMsg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("register_debug: websocket error: %v", err)
				}
				break
			}
			session.dispatch(rawMsg)
		}
	}
}

func (s *RegisterDebugSession) dispatch(rawMsg map[string]interface{}) {
	action, ok := rawMsg["action"].(string)
	if !ok {
		s.sendError("missing or invalid action field")
		return
	}

	switch action {
	case "get_map":
		device, _ := rawMsg["device"].(string)
		if device == "" {
			device = "eeprom"
		}
		if err := s.sendRegisterMap(device); err != nil {
			s.sendError(err.Error())
		}
	case "read":
		s.handleRead(rawMsg)
	case "read_all":
		s.handleReadAll()
	case "calibration":
		s.handleCalibration()
	case "settings":
		s.sendSettings("")
	case "set_mode":
		s.handleSetMode(rawMsg)
	case "set_srd":
		s.handleSetSRD(rawMsg)
	case "reset":
		s.handleReset()
	case "export_eeprom":
		s.handleExportEEPROM()
	default:
		s.sendError(fmt.Sprintf("unknown action: %s", action))
	}
}

func (s *RegisterDebugSession) handleRead(rawMsg map[string]interface{}) {
	addr, _ := rawMsg["addr"].(string)
	length, _ := rawMsg["len"].(float64)
	if addr == "" {
		s.sendError("missing addr field")
		return
	}
	if length == 0 {
		length = 1
	}

	a, err := strconv.ParseUint(addr, 0, 16)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}

	b, err := s.mgr.ReadEEPROM(uint16(a), int(length))
	if err != nil {
		s.sendError(fmt.Sprintf("read error: %v", err))
		return
	}

	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    "eeprom",
		Address:   fmt.Sprintf("0x%03X", a),
		Value:     fmt.Sprintf("% X", b),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// handleReadAll reads the EEPROM once and splits it into the known fields.
func (s *RegisterDebugSession) handleReadAll() {
	image, err := s.mgr.DumpEEPROM()
	if err != nil {
		s.sendError(fmt.Sprintf("read all error: %v", err))
		return
	}

	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    "eeprom",
		Registers: eepromFields(image, func(f rsc.Field) string { return fmt.Sprintf("0x%03X", f.Addr) }),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func eepromFields(image []byte, key func(rsc.Field) string) map[string]string {
	out := make(map[string]string)
	for _, f := range rsc.Layout() {
		end := int(f.Addr) + f.Len
		if end > len(image) {
			continue
		}
		out[key(f)] = fmt.Sprintf("% X", image[f.Addr:end])
	}
	return out
}

func (s *RegisterDebugSession) handleCalibration() {
	cal, scale, err := s.mgr.Calibration()
	if err != nil {
		s.sendError(fmt.Sprintf("calibration error: %v", err))
		return
	}
	s.Conn.WriteJSON(RegisterResponse{
		Type:        "calibration",
		Calibration: &cal,
		UnitScale:   scale,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleSetMode(rawMsg map[string]interface{}) {
	name, _ := rawMsg["mode"].(string)
	m, err := rsc.ParseMode(name)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	if err := s.mgr.SetMode(m); err != nil {
		s.sendError(fmt.Sprintf("set mode error: %v", err))
		return
	}
	s.sendSettings("mode updated")
}

func (s *RegisterDebugSession) handleSetSRD(rawMsg map[string]interface{}) {
	v, ok := rawMsg["srd"].(float64)
	if !ok || v < 0 || v > 255 {
		s.sendError("srd must be 0-255")
		return
	}
	if err := s.mgr.SetSampleRateDivider(uint8(v)); err != nil {
		s.sendError(fmt.Sprintf("set srd error: %v", err))
		return
	}
	s.sendSettings("temperature divider updated")
}

func (s *RegisterDebugSession) sendSettings(msg string) {
	mode, srd, err := s.mgr.Settings()
	if err != nil {
		s.sendError(err.Error())
		return
	}
	s.Conn.WriteJSON(RegisterResponse{
		Type:    "status",
		Device:  "ads1220",
		Mode:    mode.String(),
		TempSRD: &srd,
		Message: msg,
	})
}

func (s *RegisterDebugSession) handleReset() {
	if err := s.mgr.Reset(); err != nil {
		s.sendError(fmt.Sprintf("reset error: %v", err))
		return
	}
	s.Conn.WriteJSON(RegisterResponse{
		Type:    "status",
		Device:  "ads1220",
		Status:  "reset",
		Message: "converter reset and factory configuration reloaded",
	})
}

func (s *RegisterDebugSession) handleExportEEPROM() {
	image, err := s.mgr.DumpEEPROM()
	if err != nil {
		s.sendError(fmt.Sprintf("export error: %v", err))
		return
	}
	cal, _, err := s.mgr.Calibration()
	if err != nil {
		s.sendError(fmt.Sprintf("export error: %v", err))
		return
	}

	now := time.Now()
	file := EEPROMExportFile{
		Version:      1,
		SerialNumber: cal.SerialNumber,
		Timestamp:    now.Format(time.RFC3339),
		Image:        hex.EncodeToString(image),
		Fields:       eepromFields(image, func(f rsc.Field) string { return f.Name }),
	}

	// Send as download
	fileJSON, _ := json.Marshal(file)
	s.Conn.WriteJSON(map[string]interface{}{
		"type":     "export_eeprom",
		"message":  "EEPROM exported",
		"config":   string(fileJSON),
		"filename": fmt.Sprintf("%s_%s_eeprom.json", cal.SerialNumber, now.Format("20060102_150405")),
	})
}

func (s *RegisterDebugSession) sendRegisterMap(device string) error {
	regMap, err := sensors.RegisterMap(device)
	if err != nil {
		return err
	}
	return s.Conn.WriteJSON(RegisterResponse{
		Type:        "register_map",
		Device:      device,
		RegisterMap: regMap,
	})
}

func (s *RegisterDebugSession) sendError(message string) {
	s.Conn.WriteJSON(RegisterResponse{
		Type:    "error",
		Message: message,
	})
}

// HandlePressureData serves one live reading via REST API.
func HandlePressureData(mgr RegisterDebugger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		s, err := mgr.Read()
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error": %q}`, err.Error()), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(s)
	}
}
