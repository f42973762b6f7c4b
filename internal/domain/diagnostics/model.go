// Package diagnostics translates intake diagnostic checks into the fixed
// per-repair diagnostic record and keeps exactly one live record per repair.
package diagnostics

import (
	"repairdesk/internal/core/entity"
)

// Item is one check reported by the intake workflow.
type Item struct {
	ID     string `json:"id" validate:"required"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Field names a boolean column of the diagnostic record.
type Field string

const (
	FieldBattery      Field = "battery"
	FieldWiFi         Field = "wifi"
	FieldBluetooth    Field = "bluetooth"
	FieldFrontCamera  Field = "front_camera"
	FieldRearCamera   Field = "rear_camera"
	FieldNetwork      Field = "network"
	FieldFaceID       Field = "face_id"
	FieldTouchID      Field = "touch_id"
	FieldScreen       Field = "screen"
	FieldTouchscreen  Field = "touchscreen"
	FieldSpeaker      Field = "speaker"
	FieldEarpiece     Field = "earpiece"
	FieldMicrophone   Field = "microphone"
	FieldChargingPort Field = "charging_port"
	FieldButtons      Field = "buttons"
	FieldSensors      Field = "sensors"
	FieldGPS          Field = "gps"
	FieldVibration    Field = "vibration"
	FieldMotherboard  Field = "motherboard"
	FieldHousing      Field = "housing"
)

// Fields is the fixed set of checks stored per repair.
type Fields struct {
	Battery      bool `db:"battery" json:"battery"`
	WiFi         bool `db:"wifi" json:"wifi"`
	Bluetooth    bool `db:"bluetooth" json:"bluetooth"`
	FrontCamera  bool `db:"front_camera" json:"frontCamera"`
	RearCamera   bool `db:"rear_camera" json:"rearCamera"`
	Network      bool `db:"network" json:"network"`
	FaceID       bool `db:"face_id" json:"faceId"`
	TouchID      bool `db:"touch_id" json:"touchId"`
	Screen       bool `db:"screen" json:"screen"`
	Touchscreen  bool `db:"touchscreen" json:"touchscreen"`
	Speaker      bool `db:"speaker" json:"speaker"`
	Earpiece     bool `db:"earpiece" json:"earpiece"`
	Microphone   bool `db:"microphone" json:"microphone"`
	ChargingPort bool `db:"charging_port" json:"chargingPort"`
	Buttons      bool `db:"buttons" json:"buttons"`
	Sensors      bool `db:"sensors" json:"sensors"`
	GPS          bool `db:"gps" json:"gps"`
	Vibration    bool `db:"vibration" json:"vibration"`
	Motherboard  bool `db:"motherboard" json:"motherboard"`
	Housing      bool `db:"housing" json:"housing"`
}

func (f *Fields) ptr(field Field) *bool {
	switch field {
	case FieldBattery:
		return &f.Battery
	case FieldWiFi:
		return &f.WiFi
	case FieldBluetooth:
		return &f.Bluetooth
	case FieldFrontCamera:
		return &f.FrontCamera
	case FieldRearCamera:
		return &f.RearCamera
	case FieldNetwork:
		return &f.Network
	case FieldFaceID:
		return &f.FaceID
	case FieldTouchID:
		return &f.TouchID
	case FieldScreen:
		return &f.Screen
	case FieldTouchscreen:
		return &f.Touchscreen
	case FieldSpeaker:
		return &f.Speaker
	case FieldEarpiece:
		return &f.Earpiece
	case FieldMicrophone:
		return &f.Microphone
	case FieldChargingPort:
		return &f.ChargingPort
	case FieldButtons:
		return &f.Buttons
	case FieldSensors:
		return &f.Sensors
	case FieldGPS:
		return &f.GPS
	case FieldVibration:
		return &f.Vibration
	case FieldMotherboard:
		return &f.Motherboard
	case FieldHousing:
		return &f.Housing
	}
	return nil
}

// Set marks field as passed.
func (f *Fields) Set(field Field) {
	if p := f.ptr(field); p != nil {
		*p = true
	}
}

// Get returns the value of field.
func (f Fields) Get(field Field) bool {
	if p := f.ptr(field); p != nil {
		return *p
	}
	return false
}

// Snapshot is the persisted diagnostic record of a repair.
type Snapshot struct {
	ID       int64 `db:"id" json:"id"`
	RepairID int64 `db:"repair_id" json:"repairId"`
	Fields
	Summary string `db:"summary" json:"summary"`

	entity.Audit
	entity.SoftDelete
}
