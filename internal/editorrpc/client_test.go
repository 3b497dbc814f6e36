package editorrpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileOpenDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/file_open", r.URL.Path)
		var req FileOpenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "foo.go", req.FsFilePath)
		json.NewEncoder(w).Encode(FileOpenResponse{FsFilePath: "foo.go", Contents: "package foo", Exists: true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.FileOpen(t.Context(), "foo.go")
	require.NoError(t, err)
	require.True(t, resp.Exists)
	require.Equal(t, "package foo", resp.Contents)
}

func TestPostWrapsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.FileOpen(t.Context(), "foo.go")
	require.ErrorIs(t, err, ErrCommunicatingWithEditor)
}

func TestPostWrapsTransportFailure(t *testing.T) {
	c := New("http://127.0.0.1:0")
	_, err := c.ListFiles(t.Context(), ".")
	require.ErrorIs(t, err, ErrCommunicatingWithEditor)
}

func TestPostWrapsDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListFiles(t.Context(), ".")
	require.ErrorIs(t, err, ErrSerdeConversionFailed)
}

func TestApplyEditsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ApplyEditsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "foo.go", req.FsFilePath)
		require.Len(t, req.Edits, 1)
		json.NewEncoder(w).Encode(ApplyEditsResponse{Applied: true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.ApplyEdits(t.Context(), "foo.go", []Edit{{NewText: "x"}})
	require.NoError(t, err)
	require.True(t, resp.Applied)
}
