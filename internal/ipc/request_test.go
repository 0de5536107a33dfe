package ipc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabtrack/internal/event"
)

func decodeJSON(t *testing.T, raw string) (Request, error) {
	t.Helper()
	var cmd Command
	require.NoError(t, json.Unmarshal([]byte(raw), &cmd))
	return Decode(cmd)
}

func TestDecodeCommands(t *testing.T) {
	tests := []struct {
		raw  string
		want Request
	}{
		{`{"name":"ping"}`, Ping{}},
		{`{"name":"startTracking"}`, StartTracking{}},
		{`{"name":"stopTracking"}`, StopTracking{}},
		{`{"name":"getSwitchingReport","args":{"period":"weekly"}}`, GetSwitchingReport{Period: "weekly"}},
		{`{"name":"getSwitchingReport"}`, GetSwitchingReport{Period: "daily"}},
		{`{"name":"updateDomainCategory","args":{"domain":"github.com","category":"Work"}}`, UpdateCategory{Domain: "github.com", Category: "Work"}},
		{`{"name":"updateURLCategory","args":{"url":"https://bbc.com/news","category":"News"}}`, UpdateCategory{Domain: "https://bbc.com/news", Category: "News"}},
		{`{"name":"addCategory","args":{"category":"Dev","patterns":["go.dev"]}}`, AddCategory{Name: "Dev", Patterns: []string{"go.dev"}}},
		{`{"name":"getHistory"}`, GetHistory{Days: 7}},
		{`{"name":"getHistory","args":{"days":30}}`, GetHistory{Days: 30}},
		{`{"name":"getRecentSwitches"}`, GetRecentSwitches{Limit: 10}},
		{`{"name":"getRecentSwitches","args":{"limit":3}}`, GetRecentSwitches{Limit: 3}},
		{`{"name":"restartAll"}`, RestartAll{}},
		{`{"name":"activityDetected"}`, Signal{Signal: event.ActivityDetected{}}},
		{`{"name":"tabActivated","args":{"tabId":3,"windowId":1,"url":"https://github.com"}}`,
			Signal{Signal: event.TabActivated{TabID: 3, WindowID: 1, URL: "https://github.com"}}},
		{`{"name":"windowFocusChanged","args":{"windowId":-1}}`, Signal{Signal: event.WindowFocusChanged{WindowID: event.WindowNone}}},
		{`{"name":"idleStateChanged","args":{"state":"locked"}}`, Signal{Signal: event.IdleStateChanged{State: event.IdleLocked}}},
	}
	for _, tt := range tests {
		got, err := decodeJSON(t, tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	_, err := decodeJSON(t, `{"name":"launchRockets"}`)
	assert.True(t, errors.Is(err, ErrUnknownCommand))

	for _, raw := range []string{
		`{"name":"updateDomainCategory","args":{"domain":"github.com"}}`,
		`{"name":"addCategory","args":{}}`,
		`{"name":"idleStateChanged","args":{"state":"asleep"}}`,
		`{"name":"tabActivated","args":{"tabId":"three"}}`,
	} {
		_, err := decodeJSON(t, raw)
		assert.True(t, errors.Is(err, ErrInvalidArgs), raw)
	}
}

func TestResponseHelpers(t *testing.T) {
	r := OK("done", FocusScoreData{FocusScore: 80})
	require.NoError(t, r.Err())
	var data FocusScoreData
	require.NoError(t, r.Decode(&data))
	assert.Equal(t, 80, data.FocusScore)

	r = Fail(errors.New("boom"))
	assert.Equal(t, StatusError, r.Status)
	assert.EqualError(t, r.Err(), "boom")
	assert.Error(t, r.Decode(&data))

	raw, err := json.Marshal(OK("pong", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","message":"pong"}`, string(raw))
}
