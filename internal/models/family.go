package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrAgeType is returned when a family member's age is neither a string nor a number.
var ErrAgeType = errors.New("age must be a string or a number")

type FamilyMember struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Age          Age    `json:"age"`
}

// Age accepts both "12" and 12 on input and always encodes as a string.
type Age string

func (a *Age) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Age(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return ErrAgeType
		}
		*a = Age(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	return ErrAgeType
}
