package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novara/internal/model"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteNotFound(rec, "Book not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeNotFound, body.Error.Code)
	assert.Equal(t, "Book not found", body.Error.Message)
}

func TestWriteMessage(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteMessage(rec, "Logged out")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logged out"}`, rec.Body.String())
}

func decode(t *testing.T, body string, dst interface{}) error {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return DecodeJSON(httptest.NewRecorder(), req, dst)
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     bool
		wantInvalid bool
	}{
		{name: "valid", body: `{"title":"Dune","author":"Herbert","price":"9.90","condition":"Good","genre":"SciFi"}`},
		{name: "malformed", body: `{"title":`, wantErr: true},
		{name: "missing title", body: `{"author":"Herbert","price":"9.90","condition":"Good","genre":"SciFi"}`, wantErr: true, wantInvalid: true},
		{name: "bad price", body: `{"title":"Dune","author":"Herbert","price":"cheap","condition":"Good","genre":"SciFi"}`, wantErr: true, wantInvalid: true},
		{name: "exponent price", body: `{"title":"Dune","author":"Herbert","price":"1e20000000","condition":"Good","genre":"SciFi"}`, wantErr: true, wantInvalid: true},
		{name: "negative price", body: `{"title":"Dune","author":"Herbert","price":"-1","condition":"Good","genre":"SciFi"}`, wantErr: true, wantInvalid: true},
		{name: "bad image url", body: `{"title":"Dune","author":"Herbert","price":"1","condition":"Good","genre":"SciFi","imageUrl":"nope"}`, wantErr: true, wantInvalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req model.CreateBookRequest
			err := decode(t, tt.body, &req)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			var verr *ValidationError
			assert.Equal(t, tt.wantInvalid, errors.As(err, &verr))
			if !tt.wantInvalid {
				assert.ErrorIs(t, err, ErrMalformedJSON)
			}
		})
	}
}

func TestDecodeJSON_BlankUsername(t *testing.T) {
	var verr *ValidationError

	err := decode(t, `{"username":"   ","email":"a@x.io","password":"pw"}`, &model.RegisterRequest{})

	assert.True(t, errors.As(err, &verr))
}

func TestWriteDecodeError_ValidationIsGeneric(t *testing.T) {
	var req model.CreateOrderRequest
	err := decode(t, `{"bookId":0,"totalAmount":"x"}`, &req)
	require.Error(t, err)
	// field names stay in the server-side error
	assert.Contains(t, err.Error(), "totalAmount")

	rec := httptest.NewRecorder()
	WriteDecodeError(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeValidation, body.Error.Code)
	assert.Equal(t, "Invalid data", body.Error.Message)
	assert.NotContains(t, rec.Body.String(), "bookId")
	assert.NotContains(t, rec.Body.String(), "totalAmount")
}

func TestDecodeJSON_PartialUpdate(t *testing.T) {
	var req model.UpdateBookRequest
	require.NoError(t, decode(t, `{"price":"12"}`, &req))
	require.NotNil(t, req.Price)
	assert.Nil(t, req.Title)

	assert.Error(t, decode(t, `{"price":"twelve"}`, &model.UpdateBookRequest{}))
}

func TestWriteDecodeError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDecodeError(rec, httptest.NewRequest(http.MethodPost, "/", nil), ErrMalformedJSON)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeBadRequest, body.Error.Code)
}
