package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Domenick1991/skybooking/internal/remote"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	auth     *httptest.Server
	bookings *httptest.Server
	created  remote.BookingPayload
	bookedID uuid.UUID
}

func newStack(t *testing.T, wantCredential string) *stack {
	t.Helper()
	s := &stack{bookedID: uuid.New()}
	s.auth = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Identity   string `json:"identity"`
			Credential string `json:"credential"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Credential != wantCredential {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"cli-token"}`))
	}))
	s.bookings = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer cli-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/bookings":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&s.created))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(remote.BookingView{ID: s.bookedID, Code: "QX7P2M9KD4", FlightID: s.created.FlightID})
		case r.Method == http.MethodGet && r.URL.Path == "/api/bookings/"+s.bookedID.String():
			_ = json.NewEncoder(w).Encode(remote.BookingView{ID: s.bookedID, Code: "QX7P2M9KD4"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.auth.Close)
	t.Cleanup(s.bookings.Close)
	return s
}

func (s *stack) writeConfig(t *testing.T) string {
	t.Helper()
	cfg := fmt.Sprintf(`
identity:
  name: bookingctl
  credential: from-file
services:
  auth: {base_url: %q}
  bookings: {base_url: %q}
  flights: {base_url: "http://flights.invalid"}
  users: {base_url: "http://users.invalid"}
logging:
  level: error
`, s.auth.URL, s.bookings.URL)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	s := newStack(t, "from-file")

	out, err := execute(t, "token", "--config", s.writeConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "cli-token\n", out)
}

func TestTokenCommand_EnvOverridesCredential(t *testing.T) {
	s := newStack(t, "from-env")
	t.Setenv("BOOKINGCTL_IDENTITY_CREDENTIAL", "from-env")

	out, err := execute(t, "token", "--config", s.writeConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "cli-token\n", out)
}

func TestBookCommand(t *testing.T) {
	s := newStack(t, "from-file")
	request := filepath.Join(t.TempDir(), "booking.yaml")
	require.NoError(t, os.WriteFile(request, []byte(`
flight_id: 42
customer_id: U1
passengers:
  - name: Ada
    surname: Lovelace
    document_number: P100
    issuing_country: GB
    birth_date: "1990-12-10"
    gender: F
    phone: "+441234567890"
    carry_on_kg: 8
`), 0o600))

	out, err := execute(t, "book", request, "--config", s.writeConfig(t))
	require.NoError(t, err)

	assert.Equal(t, int64(42), s.created.FlightID)
	require.Len(t, s.created.Passengers, 1)
	assert.Equal(t, "P100", s.created.Passengers[0].DocumentNumber)
	assert.Equal(t, "1990-12-10", s.created.Passengers[0].BirthDate)

	var view remote.BookingView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, s.bookedID, view.ID)
	assert.Equal(t, "QX7P2M9KD4", view.Code)
}

func TestGetCommand(t *testing.T) {
	s := newStack(t, "from-file")
	cfg := s.writeConfig(t)

	out, err := execute(t, "get", s.bookedID.String(), "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, s.bookedID.String())

	_, err = execute(t, "get", "not-a-uuid", "--config", cfg)
	assert.ErrorContains(t, err, "invalid booking id")
}

func TestEventsCommand_RequiresKafka(t *testing.T) {
	s := newStack(t, "from-file")

	_, err := execute(t, "events", "--config", s.writeConfig(t))
	assert.ErrorContains(t, err, "kafka.brokers")
}

func TestMissingConfig(t *testing.T) {
	_, err := execute(t, "token", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "read config")
}
