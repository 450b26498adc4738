package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/workshop/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pathRequest struct {
	ID   string `param:"id" validate:"required"`
	Name string `json:"name" validate:"max=5"`
}

func (r *pathRequest) Validate() error {
	return Struct(r)
}

type customRequest struct{}

func (r *customRequest) Validate() error {
	return CustomValidationErrors{{Field: "name", Message: "is taken"}}
}

func newContext(method, body string, id string) echo.Context {
	req := httptest.NewRequest(method, "/users/"+id, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetPath("/users/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	return httpErr
}

func TestBindAndValidate_OK(t *testing.T) {
	req := &pathRequest{}
	require.NoError(t, BindAndValidate(newContext(http.MethodPut, `{"name":"bob"}`, "42"), req))

	assert.Equal(t, "42", req.ID)
	assert.Equal(t, "bob", req.Name)
}

func TestBindAndValidate_MissingPathID(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPut, `{}`, ""), &pathRequest{})

	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, errs.FieldError{Field: "id", Error: "is required"}, httpErr.Errors[0])
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPut, `{"name":`, "42"), &pathRequest{})

	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.NotEmpty(t, httpErr.Message)
	assert.Empty(t, httpErr.Errors)
}

func TestBindAndValidate_MaxLength(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPut, `{"name":"Maria Brown"}`, "42"), &pathRequest{})

	httpErr := asHTTPError(t, err)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "must not exceed 5 characters", httpErr.Errors[0].Error)
}

func TestBindAndValidate_CustomErrors(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{}`, "1"), &customRequest{})

	httpErr := asHTTPError(t, err)
	assert.Equal(t, []errs.FieldError{{Field: "name", Error: "is taken"}}, httpErr.Errors)
}
