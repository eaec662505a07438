package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeAcceptsStringOrNumber(t *testing.T) {
	var members []FamilyMember
	raw := `[{"name":"Tom","relationship":"son","age":7},
	         {"name":"Ann","relationship":"wife","age":"34"},
	         {"name":"Baby","relationship":"daughter","age":0.5},
	         {"name":"Gran","relationship":"mother"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &members))

	assert.Equal(t, Age("7"), members[0].Age)
	assert.Equal(t, Age("34"), members[1].Age)
	assert.Equal(t, Age("0.5"), members[2].Age)
	assert.Equal(t, Age(""), members[3].Age)
}

func TestAgeRejectsOtherTypes(t *testing.T) {
	for _, raw := range []string{`{"age":true}`, `{"age":{"years":3}}`, `{"age":[1]}`} {
		var m FamilyMember
		err := json.Unmarshal([]byte(raw), &m)
		assert.ErrorIs(t, err, ErrAgeType, raw)
	}
}

func TestAgeEncodesAsString(t *testing.T) {
	b, err := json.Marshal(FamilyMember{Name: "Tom", Relationship: "son", Age: "7"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Tom","relationship":"son","age":"7"}`, string(b))
}
