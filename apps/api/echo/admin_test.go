package echoapi_test

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
	"github.com/trezcool/shule/core/school"
	emailsvc "github.com/trezcool/shule/services/email"
)

func TestAdminRegister(t *testing.T) {
	emailsvc.ResetSentMessages()

	body := echo.Map{
		"name":       "  Jane Doe  ",
		"email":      " Jane.Doe@School.TEST ",
		"password":   "Sekr3t!pwd",
		"schoolName": "Greenwood High",
	}
	rec := doRequest(newRequest(t, http.MethodPost, "/AdminReg", body))
	checkCode(t, rec, http.StatusOK)

	var got map[string]interface{}
	decodeBody(t, rec, &got)

	if got["id"] == nil || got["id"] == "" {
		t.Error("id missing from response")
	}
	if got["name"] != "Jane Doe" {
		t.Errorf("name = %v; expected trimmed %q", got["name"], "Jane Doe")
	}
	if got["email"] != "jane.doe@school.test" {
		t.Errorf("email = %v; expected normalized %q", got["email"], "jane.doe@school.test")
	}
	if got["role"] != admin.RoleAdmin {
		t.Errorf("role = %v; expected %q", got["role"], admin.RoleAdmin)
	}
	if got["schoolName"] != "Greenwood High" {
		t.Errorf("schoolName = %v; expected %q", got["schoolName"], "Greenwood High")
	}
	// no password material ever leaves the server
	for key := range got {
		if strings.Contains(strings.ToLower(key), "password") {
			t.Errorf("response leaks password field %q", key)
		}
	}

	if n := len(emailsvc.SentMessages); n != 1 {
		t.Fatalf("sent emails = %d; expected 1", n)
	}
	if to := emailsvc.SentMessages[0].To[0].Address; to != "jane.doe@school.test" {
		t.Errorf("welcome email to = %q; expected %q", to, "jane.doe@school.test")
	}
}

func TestAdminRegisterValidation(t *testing.T) {
	valid := echo.Map{
		"name":       "Jane Doe",
		"email":      nextEmail(),
		"password":   "Sekr3t!pwd",
		"schoolName": "Greenwood High",
	}
	withField := func(key string, val interface{}) echo.Map {
		body := echo.Map{}
		for k, v := range valid {
			body[k] = v
		}
		body[key] = val
		return body
	}

	tests := []struct {
		name    string
		body    echo.Map
		wantMsg string
	}{
		{name: "missing name", body: withField("name", ""), wantMsg: "Name is required"},
		{name: "whitespace name", body: withField("name", "   "), wantMsg: "Name is required"},
		{name: "missing email", body: withField("email", ""), wantMsg: "Email is required"},
		{name: "missing password", body: withField("password", ""), wantMsg: "Password is required"},
		{name: "whitespace password", body: withField("password", "      "), wantMsg: "Password is required"},
		{name: "missing school name", body: withField("schoolName", ""), wantMsg: "School name is required"},
		{name: "name too long", body: withField("name", strings.Repeat("a", 101)), wantMsg: "Name is too long"},
		{name: "script in name", body: withField("name", "<script>alert(1)</script>"), wantMsg: "Invalid characters in name"},
		{name: "email too long", body: withField("email", strings.Repeat("a", 250)+"@x.com"), wantMsg: "Email is too long"},
		{name: "invalid email", body: withField("email", "not-an-email"), wantMsg: "Invalid email format"},
		{name: "short password", body: withField("password", "abc12"), wantMsg: "Password must be at least 6 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(newRequest(t, http.MethodPost, "/AdminReg", tt.body))
			checkCodeAndMessage(t, rec, http.StatusBadRequest, tt.wantMsg)
		})
	}

	t.Run("password at minimum", func(t *testing.T) {
		body := withField("password", "abc123")
		body["email"] = nextEmail()
		rec := doRequest(newRequest(t, http.MethodPost, "/AdminReg", body))
		checkCode(t, rec, http.StatusOK)
	})

	t.Run("multibyte name at limit", func(t *testing.T) {
		// 100 characters, twice as many bytes
		body := withField("name", strings.Repeat("é", 100))
		body["email"] = nextEmail()
		rec := doRequest(newRequest(t, http.MethodPost, "/AdminReg", body))
		checkCode(t, rec, http.StatusOK)
	})
}

func TestAdminRegisterDuplicateEmail(t *testing.T) {
	body := echo.Map{
		"name":       "Jane Doe",
		"email":      "  Dupe@School.TEST ",
		"password":   "Sekr3t!pwd",
		"schoolName": "Greenwood High",
	}
	rec := doRequest(newRequest(t, http.MethodPost, "/AdminReg", body))
	checkCode(t, rec, http.StatusOK)

	// same address modulo case and surrounding whitespace
	body["email"] = "dupe@school.test"
	body["schoolName"] = "Another School"
	rec = doRequest(newRequest(t, http.MethodPost, "/AdminReg", body))
	checkCodeAndMessage(t, rec, http.StatusBadRequest, "Email already exists")
}

func TestAdminLogin(t *testing.T) {
	email := nextEmail()
	adm, _ := createAdmin(t, email)

	tests := []struct {
		name     string
		body     echo.Map
		wantCode int
		wantMsg  string
	}{
		{
			name:     "success",
			body:     echo.Map{"email": email, "password": "Sekr3t!pwd"},
			wantCode: http.StatusOK,
		},
		{
			name:     "email case-insensitive",
			body:     echo.Map{"email": strings.ToUpper(email), "password": "Sekr3t!pwd"},
			wantCode: http.StatusOK,
		},
		{
			name:     "unknown email",
			body:     echo.Map{"email": "ghost@school.test", "password": "Sekr3t!pwd"},
			wantCode: http.StatusNotFound,
			wantMsg:  "Admin not found",
		},
		{
			name:     "wrong password",
			body:     echo.Map{"email": email, "password": "wrongpwd"},
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Invalid credentials",
		},
		{
			name:     "missing email",
			body:     echo.Map{"password": "Sekr3t!pwd"},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Email and password are required",
		},
		{
			name:     "missing password",
			body:     echo.Map{"email": email},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Email and password are required",
		},
		{
			name:     "empty body",
			body:     echo.Map{},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Email and password are required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(newRequest(t, http.MethodPost, "/AdminLogin", tt.body))
			if tt.wantMsg != "" {
				checkCodeAndMessage(t, rec, tt.wantCode, tt.wantMsg)
				return
			}
			checkCode(t, rec, tt.wantCode)

			var got map[string]interface{}
			decodeBody(t, rec, &got)
			if got["id"] != adm.ID {
				t.Errorf("id = %v; expected %q", got["id"], adm.ID)
			}
			if got["role"] != admin.RoleAdmin {
				t.Errorf("role = %v; expected %q", got["role"], admin.RoleAdmin)
			}
			token, _ := got["token"].(string)
			if token == "" {
				t.Fatal("token missing from response")
			}
			claims, err := echoapi.VerifyToken(conf, token)
			if err != nil {
				t.Fatalf("VerifyToken() failed on issued token, %v", err)
			}
			if claims.Subject != adm.ID {
				t.Errorf("token subject = %q; expected %q", claims.Subject, adm.ID)
			}
			for key := range got {
				if strings.Contains(strings.ToLower(key), "password") {
					t.Errorf("response leaks password field %q", key)
				}
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	adm, token := createAdmin(t, nextEmail())

	expiredConf := *conf
	expiredConf.JWTExpirationDelta = -time.Hour
	expiredToken, err := echoapi.GenerateToken(&expiredConf, echoapi.GetAdminClaims(&expiredConf, adm))
	if err != nil {
		t.Fatalf("GenerateToken() failed, %v", err)
	}

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantMsg  string
	}{
		{name: "no header", wantCode: http.StatusUnauthorized, wantMsg: "Authorization token is missing"},
		{name: "wrong scheme", header: "Basic " + token, wantCode: http.StatusUnauthorized, wantMsg: "Invalid token format"},
		{name: "lowercase scheme", header: "bearer " + token, wantCode: http.StatusUnauthorized, wantMsg: "Invalid token format"},
		{name: "scheme only", header: "Bearer", wantCode: http.StatusUnauthorized, wantMsg: "Invalid token format"},
		{name: "empty token", header: "Bearer ", wantCode: http.StatusUnauthorized, wantMsg: "Invalid token format"},
		{name: "extra parts", header: "Bearer " + token + " extra", wantCode: http.StatusUnauthorized, wantMsg: "Invalid token format"},
		{name: "token without scheme", header: token, wantCode: http.StatusUnauthorized, wantMsg: "Invalid token format"},
		{name: "garbage token", header: "Bearer not.a.token", wantCode: http.StatusUnauthorized, wantMsg: "Invalid token"},
		{name: "expired token", header: "Bearer " + expiredToken, wantCode: http.StatusUnauthorized, wantMsg: "Token has expired"},
		{name: "valid token", header: "Bearer " + token, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(t, http.MethodGet, "/Admins", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := doRequest(req)
			if tt.wantMsg != "" {
				checkCodeAndMessage(t, rec, tt.wantCode, tt.wantMsg)
				return
			}
			checkCode(t, rec, tt.wantCode)
		})
	}
}

func TestAdminRetrieve(t *testing.T) {
	adm, _ := createAdmin(t, nextEmail())

	rec := doRequest(newRequest(t, http.MethodGet, "/Admin/"+adm.ID, nil))
	checkCode(t, rec, http.StatusOK)

	var got admin.Admin
	decodeBody(t, rec, &got)
	got.CreatedAt, got.UpdatedAt = adm.CreatedAt, adm.UpdatedAt // JSON round-trip truncation
	checkData(t, got, adm)

	rec = doRequest(newRequest(t, http.MethodGet, "/Admin/no-such-id", nil))
	checkCodeAndMessage(t, rec, http.StatusNotFound, "Admin not found")
}

func TestAdminList(t *testing.T) {
	adm, token := createAdmin(t, nextEmail())

	rec := doRequest(newAuthRequest(t, http.MethodGet, "/Admins", token, nil))
	checkCode(t, rec, http.StatusOK)

	var got []admin.Admin
	decodeBody(t, rec, &got)
	var found bool
	for _, a := range got {
		if a.ID == adm.ID {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("admin %s missing from list of %d", adm.ID, len(got))
	}
}

func TestAdminUpdate(t *testing.T) {
	email := nextEmail()
	adm, token := createAdmin(t, email)
	other, _ := createAdmin(t, nextEmail())

	t.Run("name only", func(t *testing.T) {
		rec := doRequest(newAuthRequest(t, http.MethodPut, "/Admin/"+adm.ID, token, echo.Map{"name": "Janet Doe"}))
		checkCode(t, rec, http.StatusOK)

		var got admin.Admin
		decodeBody(t, rec, &got)
		if got.Name != "Janet Doe" {
			t.Errorf("name = %q; expected %q", got.Name, "Janet Doe")
		}
		if got.Email != email {
			t.Errorf("email = %q; expected untouched %q", got.Email, email)
		}
	})

	t.Run("own email passes uniqueness", func(t *testing.T) {
		rec := doRequest(newAuthRequest(t, http.MethodPut, "/Admin/"+adm.ID, token, echo.Map{"email": email}))
		checkCode(t, rec, http.StatusOK)
	})

	t.Run("taken email", func(t *testing.T) {
		rec := doRequest(newAuthRequest(t, http.MethodPut, "/Admin/"+adm.ID, token, echo.Map{"email": other.Email}))
		checkCodeAndMessage(t, rec, http.StatusBadRequest, "Email already exists")
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := doRequest(newAuthRequest(t, http.MethodPut, "/Admin/"+adm.ID, token, echo.Map{"email": "nope"}))
		checkCodeAndMessage(t, rec, http.StatusBadRequest, "Invalid email format")
	})

	t.Run("password change rehashes", func(t *testing.T) {
		rec := doRequest(newAuthRequest(t, http.MethodPut, "/Admin/"+adm.ID, token, echo.Map{"password": "N3w!passwd"}))
		checkCode(t, rec, http.StatusOK)

		updated, err := adminSvc.GetByID(context.Background(), adm.ID)
		if err != nil {
			t.Fatalf("GetByID() failed, %v", err)
		}
		if err = updated.CheckPassword("N3w!passwd"); err != nil {
			t.Errorf("new password rejected, %v", err)
		}
		if err = updated.CheckPassword("Sekr3t!pwd"); err == nil {
			t.Error("old password still accepted")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := doRequest(newAuthRequest(t, http.MethodPut, "/Admin/no-such-id", token, echo.Map{"name": "X"}))
		checkCodeAndMessage(t, rec, http.StatusNotFound, "Admin not found")
	})

	t.Run("no auth", func(t *testing.T) {
		rec := doRequest(newRequest(t, http.MethodPut, "/Admin/"+adm.ID, echo.Map{"name": "X"}))
		checkCodeAndMessage(t, rec, http.StatusUnauthorized, "Authorization token is missing")
	})
}

func seedSchoolData(t *testing.T, schoolID string) {
	t.Helper()
	ctx := context.Background()

	cls, err := schoolSvc.CreateClass(ctx, schoolID, school.NewClass{Name: "Grade 1"})
	if err != nil {
		t.Fatalf("CreateClass() failed, %v", err)
	}
	if _, err = schoolSvc.CreateStudent(ctx, schoolID, school.NewStudent{Name: "Student A", RollNum: 1, ClassID: cls.ID}); err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}
	if _, err = schoolSvc.CreateTeacher(ctx, schoolID, school.NewTeacher{Name: "Teacher A", ClassID: cls.ID}); err != nil {
		t.Fatalf("CreateTeacher() failed, %v", err)
	}
	if _, err = schoolSvc.CreateSubject(ctx, schoolID, school.NewSubject{Name: "Maths", Code: "MTH101", ClassID: cls.ID}); err != nil {
		t.Fatalf("CreateSubject() failed, %v", err)
	}
	if _, err = schoolSvc.CreateNotice(ctx, schoolID, school.NewNotice{Title: "Opening day", Details: "School opens Monday"}); err != nil {
		t.Fatalf("CreateNotice() failed, %v", err)
	}
	if _, err = schoolSvc.CreateComplaint(ctx, schoolID, school.NewComplaint{User: "parent-1", Complaint: "Bus was late"}); err != nil {
		t.Fatalf("CreateComplaint() failed, %v", err)
	}
}

func TestAdminDestroy(t *testing.T) {
	adm, token := createAdmin(t, nextEmail())
	bystander, _ := createAdmin(t, nextEmail())
	seedSchoolData(t, adm.ID)
	seedSchoolData(t, bystander.ID)

	schoolRepo.DeletedCollections = nil
	rec := doRequest(newAuthRequest(t, http.MethodDelete, "/Admin/"+adm.ID, token, nil))
	checkCodeAndMessage(t, rec, http.StatusOK, "Admin and all related data deleted successfully")

	if !reflect.DeepEqual(schoolRepo.DeletedCollections, school.CascadeOrder) {
		t.Errorf("deleted collections = %v; expected %v", schoolRepo.DeletedCollections, school.CascadeOrder)
	}

	// account record goes last
	rec = doRequest(newRequest(t, http.MethodGet, "/Admin/"+adm.ID, nil))
	checkCodeAndMessage(t, rec, http.StatusNotFound, "Admin not found")

	// other schools untouched
	counts, err := schoolSvc.Counts(context.Background(), bystander.ID)
	if err != nil {
		t.Fatalf("Counts() failed, %v", err)
	}
	expected := school.Counts{Students: 1, Teachers: 1, Classes: 1, Subjects: 1}
	if counts != expected {
		t.Errorf("bystander counts = %+v; expected %+v", counts, expected)
	}

	t.Run("unknown id", func(t *testing.T) {
		rec := doRequest(newAuthRequest(t, http.MethodDelete, "/Admin/no-such-id", token, nil))
		checkCodeAndMessage(t, rec, http.StatusNotFound, "Admin not found")
	})
}

func TestAdminDestroyPartialFailure(t *testing.T) {
	adm, token := createAdmin(t, nextEmail())
	seedSchoolData(t, adm.ID)

	schoolRepo.DeletedCollections = nil
	schoolRepo.FailOn = "subjects"
	schoolRepo.FailErr = errors.New("storage offline")
	defer func() {
		schoolRepo.FailOn = ""
		schoolRepo.FailErr = nil
	}()

	rec := doRequest(newAuthRequest(t, http.MethodDelete, "/Admin/"+adm.ID, token, nil))
	checkCodeAndMessage(t, rec, http.StatusInternalServerError, "storage offline")

	// collections before the failure point stay deleted
	if !reflect.DeepEqual(schoolRepo.DeletedCollections, []string{"classes", "students", "teachers"}) {
		t.Errorf("deleted collections = %v; expected [classes students teachers]", schoolRepo.DeletedCollections)
	}

	// account record survives so the call can be retried
	rec = doRequest(newRequest(t, http.MethodGet, "/Admin/"+adm.ID, nil))
	checkCode(t, rec, http.StatusOK)

	counts, err := schoolSvc.Counts(context.Background(), adm.ID)
	if err != nil {
		t.Fatalf("Counts() failed, %v", err)
	}
	expected := school.Counts{Subjects: 1}
	if counts != expected {
		t.Errorf("counts = %+v; expected %+v", counts, expected)
	}

	// retrying finishes the cascade
	schoolRepo.FailOn = ""
	schoolRepo.FailErr = nil
	schoolRepo.DeletedCollections = nil
	rec = doRequest(newAuthRequest(t, http.MethodDelete, "/Admin/"+adm.ID, token, nil))
	checkCodeAndMessage(t, rec, http.StatusOK, "Admin and all related data deleted successfully")

	rec = doRequest(newRequest(t, http.MethodGet, "/Admin/"+adm.ID, nil))
	checkCodeAndMessage(t, rec, http.StatusNotFound, "Admin not found")
}

func TestAdminDestroyIntegrityFailureSignalsShutdown(t *testing.T) {
	adm, token := createAdmin(t, nextEmail())
	seedSchoolData(t, adm.ID)

	schoolRepo.FailOn = "notices"
	schoolRepo.FailErr = core.NewShutdownError("storage integrity lost")
	defer func() {
		schoolRepo.FailOn = ""
		schoolRepo.FailErr = nil
	}()

	rec := doRequest(newAuthRequest(t, http.MethodDelete, "/Admin/"+adm.ID, token, nil))
	checkCodeAndMessage(t, rec, http.StatusInternalServerError, "storage integrity lost")

	select {
	case <-app.ShutdownSignal():
	default:
		t.Error("integrity failure did not signal shutdown")
	}
}

func TestAdminDashboard(t *testing.T) {
	adm, token := createAdmin(t, nextEmail())
	seedSchoolData(t, adm.ID)
	seedSchoolData(t, adm.ID)

	rec := doRequest(newAuthRequest(t, http.MethodGet, "/AdminDashboard/"+adm.ID, token, nil))
	checkCode(t, rec, http.StatusOK)

	var got school.Counts
	decodeBody(t, rec, &got)
	expected := school.Counts{Students: 2, Teachers: 2, Classes: 2, Subjects: 2}
	if got != expected {
		t.Errorf("counts = %+v; expected %+v", got, expected)
	}

	t.Run("unknown id", func(t *testing.T) {
		rec := doRequest(newAuthRequest(t, http.MethodGet, "/AdminDashboard/no-such-id", token, nil))
		checkCodeAndMessage(t, rec, http.StatusNotFound, "Admin not found")
	})

	t.Run("no auth", func(t *testing.T) {
		rec := doRequest(newRequest(t, http.MethodGet, "/AdminDashboard/"+adm.ID, nil))
		checkCodeAndMessage(t, rec, http.StatusUnauthorized, "Authorization token is missing")
	})
}
