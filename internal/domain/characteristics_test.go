package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacteristicsKeepDocumentOrder(t *testing.T) {
	var p Product
	err := json.Unmarshal([]byte(`{
		"id": "c1-p1",
		"name": "Cleaner 12",
		"technical_characteristics": {"Цвет": "прозрачный", "Плотность": 1.05, "pH": "7", "Пусто": null}
	}`), &p)
	require.NoError(t, err)

	assert.Equal(t, Characteristics{
		{Key: "Цвет", Value: "прозрачный"},
		{Key: "Плотность", Value: "1.05"},
		{Key: "pH", Value: "7"},
		{Key: "Пусто", Value: ""},
	}, p.TechnicalCharacteristics)

	out, err := json.Marshal(p.TechnicalCharacteristics)
	require.NoError(t, err)
	assert.Equal(t, `{"Цвет":"прозрачный","Плотность":"1.05","pH":"7","Пусто":""}`, string(out))
}

func TestCharacteristicsDuplicateKeyOverwritesInPlace(t *testing.T) {
	var c Characteristics
	require.NoError(t, json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &c))
	assert.Equal(t, Characteristics{{Key: "a", Value: "3"}, {Key: "b", Value: "2"}}, c)
}

func TestCharacteristicsRejectsNonObject(t *testing.T) {
	var c Characteristics
	assert.Error(t, json.Unmarshal([]byte(`["a","b"]`), &c))
	require.NoError(t, json.Unmarshal([]byte(`null`), &c))
	assert.Nil(t, c)
}

func TestProductOmitsEmptyOptionalFields(t *testing.T) {
	out, err := json.Marshal(Product{ID: "c1-p1", Name: "Cleaner 12"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1-p1","name":"Cleaner 12"}`, string(out))
}
