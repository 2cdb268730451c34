package safe_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

func TestTruncate(t *testing.T) {
	gt.Value(t, safe.Truncate("short", 10)).Equal("short")
	gt.Value(t, safe.Truncate("abcdefghij", 4)).Equal("abcd")
	gt.Value(t, safe.Truncate("aéb", 2)).Equal("aé")
	gt.Value(t, safe.Truncate("مرحبا بكم", 5)).Equal("مرحبا")
	gt.Value(t, safe.Truncate("مرحبا", 5)).Equal("مرحبا")
	gt.Value(t, safe.Truncate("abc", 0)).Equal("")
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	safe.WriteJSON(context.Background(), w, 201, map[string]bool{"ok": true})

	gt.Value(t, w.Code).Equal(201)
	gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")
	gt.String(t, w.Body.String()).Contains(`"ok":true`)
}
