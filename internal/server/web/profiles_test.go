package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/server/profiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProfile_NoSecretInResponse(t *testing.T) {
	profs := newFakeProfiles()
	s := newTestServer(t, &fakeObjects{}, profs)

	in := map[string]string{
		"endpoint":   "http://minio:9000",
		"region":     "eu-west-1",
		"bucket":     "shared",
		"access_key": "AKIA",
		"secret_key": "s3cr3t-value",
	}
	resp := authed(t, s, jsonRequest(http.MethodPost, "/api/profiles", in))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "s3cr3t-value")
	assert.NotContains(t, string(body), "secret_key")
	assert.Equal(t, "s3cr3t-value", profs.lastInput.SecretKey)

	var e envelope
	require.NoError(t, json.Unmarshal(body, &e))
	var v profiles.View
	require.NoError(t, json.Unmarshal(e.Data, &v))
	assert.Equal(t, "NEWCODE1", v.Code)
	assert.Equal(t, "shared", v.Bucket)
}

func TestCreateProfile_Invalid(t *testing.T) {
	profs := newFakeProfiles()
	profs.createErr = fmt.Errorf("profile: %w", common.ErrorValidation)
	s := newTestServer(t, &fakeObjects{}, profs)

	resp := authed(t, s, jsonRequest(http.MethodPost, "/api/profiles", map[string]string{"endpoint": "not a url"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfiles_GetListUpdateDelete(t *testing.T) {
	profs := newFakeProfiles("AB12CD34")
	s := newTestServer(t, &fakeObjects{}, profs)

	req, _ := http.NewRequest(http.MethodGet, "/api/profiles", nil)
	resp := authed(t, s, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []profiles.Summary
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "AB12CD34", list[0].Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/profiles/AB12CD34", nil)
	resp = authed(t, s, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = authed(t, s, jsonRequest(http.MethodPut, "/api/profiles/AB12CD34", map[string]string{"bucket": "renamed"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, profs.lastPatch.Bucket)
	assert.Equal(t, "renamed", *profs.lastPatch.Bucket)
	assert.Nil(t, profs.lastPatch.SecretKey)

	req, _ = http.NewRequest(http.MethodDelete, "/api/profiles/AB12CD34", nil)
	resp = authed(t, s, req)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"AB12CD34"}, profs.deleted)

	req, _ = http.NewRequest(http.MethodGet, "/api/profiles/AB12CD34", nil)
	resp = authed(t, s, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProfiles_EmptyListIsArray(t *testing.T) {
	s := newTestServer(t, &fakeObjects{}, newFakeProfiles())

	req, _ := http.NewRequest(http.MethodGet, "/api/profiles", nil)
	resp := authed(t, s, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(decode(t, resp).Data))
}

func TestSelectProfile(t *testing.T) {
	s := newTestServer(t, &fakeObjects{}, newFakeProfiles("AB12CD34"))

	req, _ := http.NewRequest(http.MethodPost, "/api/profiles/AB12CD34/select", nil)
	resp := authed(t, s, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	c := findCookie(resp, common.ProfileCookieName)
	require.NotNil(t, c)
	assert.Equal(t, "AB12CD34", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Expires.After(time.Now()))

	req, _ = http.NewRequest(http.MethodPost, "/api/profiles/NOPE/select", nil)
	resp = authed(t, s, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Nil(t, findCookie(resp, common.ProfileCookieName))
}

func TestClearSelection(t *testing.T) {
	s := newTestServer(t, &fakeObjects{}, newFakeProfiles("AB12CD34"))

	req, _ := http.NewRequest(http.MethodDelete, "/api/profiles/selection", nil)
	req.AddCookie(&http.Cookie{Name: common.ProfileCookieName, Value: "AB12CD34"})
	resp := authed(t, s, req)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	c := findCookie(resp, common.ProfileCookieName)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.True(t, c.Expires.Before(time.Now()))
}

func TestDeleteSelectedProfile_ClearsCookie(t *testing.T) {
	s := newTestServer(t, &fakeObjects{}, newFakeProfiles("AB12CD34"))

	req, _ := http.NewRequest(http.MethodDelete, "/api/profiles/AB12CD34", nil)
	req.AddCookie(&http.Cookie{Name: common.ProfileCookieName, Value: "AB12CD34"})
	resp := authed(t, s, req)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	c := findCookie(resp, common.ProfileCookieName)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
}

func TestProfiles_NotMountedWithoutService(t *testing.T) {
	s := newTestServer(t, &fakeObjects{}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/api/profiles", nil)
	resp := authed(t, s, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
