package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pmezard/go-difflib/difflib"
)

func newRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body failed, %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func newAuthRequest(t *testing.T, method, path, token string, body interface{}) *http.Request {
	t.Helper()
	req := newRequest(t, method, path, body)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func doRequest(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response body failed, %v\nbody: %s", err, rec.Body.String())
	}
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rec.Code != expected {
		t.Fatalf("status = %d; expected %d\nbody: %s", rec.Code, expected, rec.Body.String())
	}
}

// checkCodeAndMessage asserts the status and the {"message": ...} body every
// error response carries.
func checkCodeAndMessage(t *testing.T, rec *httptest.ResponseRecorder, expectedCode int, expectedMsg string) {
	t.Helper()
	checkCode(t, rec, expectedCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	if body.Message != expectedMsg {
		t.Errorf("message = %q; expected %q", body.Message, expectedMsg)
	}
}

// checkData asserts deep equality of two values via their JSON forms and
// prints a unified diff on mismatch.
func checkData(t *testing.T, got, expected interface{}) {
	t.Helper()
	gotJSON := marshalIndent(t, got)
	expectedJSON := marshalIndent(t, expected)
	if gotJSON == expectedJSON {
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expectedJSON),
		B:        difflib.SplitLines(gotJSON),
		FromFile: "expected",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		t.Fatalf("diffing failed, %v", err)
	}
	t.Errorf("unexpected data:\n%s", diff)
}

func marshalIndent(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshaling failed, %v", err)
	}
	return string(data)
}
