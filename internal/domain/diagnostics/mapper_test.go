package diagnostics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"repairdesk/pkg/logger"
)

var quiet = logger.WithLogger(context.Background(), logger.Nop())

func TestMapDiagnosticItems_OnlyActiveItemsSetFields(t *testing.T) {
	res := MapDiagnosticItems(quiet, []Item{
		{ID: "battery", Label: "Battery", Active: true},
		{ID: "wifi", Label: "WiFi", Active: false},
	})

	assert.True(t, res.Fields.Battery)
	assert.False(t, res.Fields.WiFi)
	assert.Equal(t, 1, res.ActiveCount)
	assert.Empty(t, res.Unknown)
}

func TestMapDiagnosticItems_Aliases(t *testing.T) {
	tests := []struct {
		id   string
		want []Field
	}{
		{"camera", []Field{FieldFrontCamera, FieldRearCamera}},
		{"sim", []Field{FieldNetwork}},
		{"cellular", []Field{FieldNetwork}},
		{"system", []Field{FieldMotherboard}},
		{"clock", []Field{FieldMotherboard}},
		{"services", []Field{FieldMotherboard}},
		{"software", []Field{FieldMotherboard}},
		{"Face-ID", []Field{FieldFaceID}},
		{" Touch ID ", []Field{FieldTouchID}},
		{"charging-port", []Field{FieldChargingPort}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			res := MapDiagnosticItems(quiet, []Item{{ID: tt.id, Active: true}})
			for _, f := range tt.want {
				assert.True(t, res.Fields.Get(f), "field %s", f)
			}
			var expected Fields
			for _, f := range tt.want {
				expected.Set(f)
			}
			assert.Equal(t, expected, res.Fields, "no other field is touched")
		})
	}
}

func TestMapDiagnosticItems_UnknownIdentifier(t *testing.T) {
	res := MapDiagnosticItems(quiet, []Item{
		{ID: "hologram_projector", Label: "Hologram", Active: true},
		{ID: "unknown_inactive", Active: false},
	})

	assert.Equal(t, Fields{}, res.Fields)
	assert.Equal(t, []string{"hologram_projector"}, res.Unknown)
	assert.Equal(t, 1, res.ActiveCount)
	assert.False(t, IsKnown("hologram_projector"))
	assert.True(t, IsKnown("CAMERA"))
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  string
	}{
		{
			name: "no items",
			want: NoTestSummary,
		},
		{
			name: "both groups",
			items: []Item{
				{ID: "battery", Label: "Battery", Active: true},
				{ID: "wifi", Label: "WiFi", Active: false},
				{ID: "screen", Label: "Screen", Active: true},
			},
			want: "Componenti funzionanti: Battery, Screen\nProblemi rilevati: WiFi",
		},
		{
			name:  "only issues",
			items: []Item{{ID: "wifi", Label: "WiFi"}},
			want:  "Problemi rilevati: WiFi",
		},
		{
			name:  "label falls back to id",
			items: []Item{{ID: "gps", Active: true}},
			want:  "Componenti funzionanti: gps",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.items))
		})
	}
}
