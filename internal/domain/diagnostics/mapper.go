package diagnostics

import (
	"context"
	"strings"

	"repairdesk/pkg/logger"
)

// aliases maps normalized intake identifiers onto record fields. Several
// identifiers collapse onto one field; camera fans out to both cameras.
var aliases = map[string][]Field{
	"battery":   {FieldBattery},
	"batteria":  {FieldBattery},
	"wifi":      {FieldWiFi},
	"wi_fi":     {FieldWiFi},
	"bluetooth": {FieldBluetooth},

	"camera":       {FieldFrontCamera, FieldRearCamera},
	"front_camera": {FieldFrontCamera},
	"rear_camera":  {FieldRearCamera},
	"back_camera":  {FieldRearCamera},

	"sim":      {FieldNetwork},
	"cellular": {FieldNetwork},
	"network":  {FieldNetwork},
	"signal":   {FieldNetwork},

	"face_id":     {FieldFaceID},
	"faceid":      {FieldFaceID},
	"touch_id":    {FieldTouchID},
	"touchid":     {FieldTouchID},
	"fingerprint": {FieldTouchID},

	"screen":      {FieldScreen},
	"display":     {FieldScreen},
	"lcd":         {FieldScreen},
	"touch":       {FieldTouchscreen},
	"touchscreen": {FieldTouchscreen},

	"speaker":    {FieldSpeaker},
	"earpiece":   {FieldEarpiece},
	"microphone": {FieldMicrophone},
	"mic":        {FieldMicrophone},

	"charging":      {FieldChargingPort},
	"charging_port": {FieldChargingPort},
	"charger":       {FieldChargingPort},

	"buttons":   {FieldButtons},
	"keys":      {FieldButtons},
	"sensors":   {FieldSensors},
	"proximity": {FieldSensors},
	"gps":       {FieldGPS},
	"location":  {FieldGPS},
	"vibration": {FieldVibration},
	"haptics":   {FieldVibration},

	"system":      {FieldMotherboard},
	"clock":       {FieldMotherboard},
	"services":    {FieldMotherboard},
	"software":    {FieldMotherboard},
	"motherboard": {FieldMotherboard},

	"housing":    {FieldHousing},
	"frame":      {FieldHousing},
	"back_glass": {FieldHousing},
}

// MapResult is the outcome of translating an item list.
type MapResult struct {
	Fields Fields
	// Unknown lists active identifiers with no mapping, in input order.
	Unknown []string
	// ActiveCount is the number of items marked active.
	ActiveCount int
}

// Normalize lowercases and trims id and folds dashes and spaces into underscores.
func Normalize(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.NewReplacer("-", "_", " ", "_").Replace(id)
}

// MapDiagnosticItems translates active items into record fields. Unknown
// identifiers are accepted, leave the record untouched and are logged.
func MapDiagnosticItems(ctx context.Context, items []Item) MapResult {
	var res MapResult
	for _, item := range items {
		if !item.Active {
			continue
		}
		res.ActiveCount++

		fields, ok := aliases[Normalize(item.ID)]
		if !ok {
			res.Unknown = append(res.Unknown, item.ID)
			logger.Warn(ctx, "unknown diagnostic identifier", "id", item.ID, "label", item.Label)
			continue
		}
		for _, f := range fields {
			res.Fields.Set(f)
		}
	}
	return res
}

// IsKnown reports whether id maps onto at least one field.
func IsKnown(id string) bool {
	_, ok := aliases[Normalize(id)]
	return ok
}
