package uia2

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devicelab-dev/replaykit/pkg/core"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := &Client{
		http:      server.Client(),
		baseURL:   server.URL,
		sessionID: "test-session",
	}
	return client, server
}

func TestStatus(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("expected /status, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{"ready": true},
		})
	})
	defer server.Close()

	ready, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ready {
		t.Error("expected ready")
	}
}

func TestCreateSession_AlternateFormat(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/session" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{"sessionId": "abc-123"},
		})
	})
	defer server.Close()
	client.sessionID = ""

	if err := client.CreateSession(context.Background(), Capabilities{PlatformName: "android"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.SessionID() != "abc-123" {
		t.Errorf("session id = %q, want abc-123", client.SessionID())
	}
}

func TestTap_PostsPointerActions(t *testing.T) {
	var got map[string]interface{}
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/test-session/actions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{"value": nil})
	})
	defer server.Close()

	if err := client.Tap(context.Background(), 120, 340); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	actions, ok := got["actions"].([]interface{})
	if !ok || len(actions) != 1 {
		t.Fatalf("actions payload = %v", got)
	}
	pointer := actions[0].(map[string]interface{})
	if pointer["type"] != "pointer" {
		t.Errorf("action type = %v, want pointer", pointer["type"])
	}
	steps := pointer["actions"].([]interface{})
	move := steps[0].(map[string]interface{})
	if move["x"].(float64) != 120 || move["y"].(float64) != 340 {
		t.Errorf("move to (%v,%v), want (120,340)", move["x"], move["y"])
	}
}

func TestPressBack_SendsKeycode(t *testing.T) {
	var got map[string]interface{}
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/test-session/appium/device/press_keycode" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{"value": nil})
	})
	defer server.Close()

	if err := client.PressBack(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["keycode"].(float64) != 4 {
		t.Errorf("keycode = %v, want 4", got["keycode"])
	}
}

const testSource = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <node class="android.widget.FrameLayout" bounds="[0,0][1080,1920]" displayed="true">
    <node class="android.widget.Button" text="Save" resource-id="com.app:id/btn_save" bounds="[100,200][300,280]" displayed="true" clickable="true"/>
    <node class="android.widget.Button" text="Cancel" bounds="[400,200][600,280]" displayed="false"/>
  </node>
</hierarchy>`

func TestPageSource(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/test-session/source" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"value": testSource})
	})
	defer server.Close()

	src, err := client.PageSource(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src != testSource {
		t.Error("page source did not round-trip")
	}
}

func TestSelect_FiltersParsedSource(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"value": testSource})
	})
	defer server.Close()

	got, err := client.Select(context.Background(), core.Criteria{Text: "save", VisibleOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d descriptors, want 1", len(got))
	}
	if got[0].ResourceID != "com.app:id/btn_save" {
		t.Errorf("selected %+v, want the save button", got[0])
	}

	got, err = client.Select(context.Background(), core.Criteria{Text: "Cancel", VisibleOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("invisible view selected: %+v", got)
	}
}

func TestInfo_WindowSize(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/test-session/window/size" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{"width": 1080, "height": 2400},
		})
	})
	defer server.Close()

	info, err := client.Info(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ScreenWidth != 1080 || info.ScreenHeight != 2400 {
		t.Errorf("screen = %dx%d, want 1080x2400", info.ScreenWidth, info.ScreenHeight)
	}
}

func TestServerError_IsTransport(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{
				"error":   "unknown command",
				"message": "boom",
			},
		})
	})
	defer server.Close()

	_, err := client.PageSource(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if core.CategoryOf(err) != core.ErrCategoryTransport {
		t.Errorf("category = %q, want transport", core.CategoryOf(err))
	}
}

func TestUnreachableServer(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	err := client.Tap(context.Background(), 1, 1)
	if !errors.Is(err, core.ErrDeviceUnreachable) {
		t.Fatalf("err = %v, want ErrDeviceUnreachable", err)
	}
}
