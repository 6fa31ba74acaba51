package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Очистители", "ochistiteli"},
		{"Гидрофобизаторы", "gidrofobizatory"},
		{"Блокираторы солей", "blokiratory-soley"},
		{"Краска известковая", "kraska-izvestkovaya"},
		{"Очиститель 12", "ochistitel-12"},
		{"  Антисептики  и   биоциды ", "antiseptiki-i-biotsidy"},
		{"Hydro_Stop -- 45", "hydro-stop-45"},
		{"Щёлочь (pH 12)", "schyoloch-ph-12"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
