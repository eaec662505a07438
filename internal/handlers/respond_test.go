package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrc/retreats/internal/models"
	"github.com/dmrc/retreats/internal/services"
)

func testHandler() *Handler {
	return New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)), "")
}

func TestWriteError(t *testing.T) {
	h := testHandler()
	b := &models.RetreatBooking{ID: 7, Status: models.StatusApproved, Attended: true}

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Field: "form.email", Code: services.CodeInvalid, Message: "bad"}, http.StatusBadRequest, "invalid"},
		{"booking", services.ErrBookingNotFound, http.StatusNotFound, "not_found"},
		{"retreat", services.ErrRetreatNotFound, http.StatusNotFound, "not_found"},
		{"ticket", services.ErrTicketNotFound, http.StatusNotFound, "invalid_ticket"},
		{"conflict", &services.ConflictError{Reason: "booking is already checked in", Booking: b}, http.StatusConflict, "conflict"},
		{"storage", &services.StorageError{Op: "check in", Err: errors.New("disk I/O error at /var/lib/db")}, http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body["error"])
			assert.NotContains(t, rec.Body.String(), "/var/lib/db")
		})
	}
}

func TestWriteError_ConflictCarriesBooking(t *testing.T) {
	rec := httptest.NewRecorder()
	b := &models.RetreatBooking{ID: 7, Attended: true}
	testHandler().writeError(rec, httptest.NewRequest(http.MethodPost, "/", nil), &services.ConflictError{Reason: "x", Booking: b})

	var body struct {
		Booking models.RetreatBooking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint(7), body.Booking.ID)
	assert.True(t, body.Booking.Attended)
}

func TestDecodeJSON(t *testing.T) {
	type target struct {
		RetreatID uint `json:"retreatId"`
		Form      struct {
			Phone         string                `json:"phone"`
			FamilyMembers []models.FamilyMember `json:"familyMembers"`
		} `json:"form"`
	}
	cases := []struct {
		name  string
		body  string
		field string
		code  string
	}{
		{"empty", "", "body", services.CodeRequired},
		{"syntax", `{"retreatId":`, "body", services.CodeInvalid},
		{"string id", `{"retreatId":"one"}`, "retreatId", services.CodeInvalidType},
		{"numeric phone", `{"form":{"phone":712345678}}`, "form.phone", services.CodeInvalidType},
		{"object age", `{"form":{"familyMembers":[{"age":{"years":7}}]}}`, "form.familyMembers.age", services.CodeInvalidType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var dst target
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			err := decodeJSON(httptest.NewRecorder(), req, &dst)

			var verr *services.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.code, verr.Code)
		})
	}

	var dst target
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"retreatId":3,"form":{"familyMembers":[{"age":7},{"age":"12"}]}}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, uint(3), dst.RetreatID)
	assert.Equal(t, models.Age("7"), dst.Form.FamilyMembers[0].Age)
	assert.Equal(t, models.Age("12"), dst.Form.FamilyMembers[1].Age)
}

func TestFamilySummary(t *testing.T) {
	got := familySummary([]models.FamilyMember{
		{Name: "Tom", Relationship: "son", Age: "7"},
		{Name: "Ann", Relationship: "wife"},
		{Name: "Guest"},
	})
	assert.Equal(t, "Tom (son, 7) | Ann (wife) | Guest", got)
	assert.Empty(t, familySummary(nil))
}
