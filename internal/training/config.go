package training

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Source is the content a session drills: themed words or card sets, never both.
type Source string

const (
	SourceWords Source = "words"
	SourceCards Source = "cards"
)

// Config is the validated configuration of a drill run.
type Config struct {
	Modes      []Mode     `json:"modes"`
	ThemeIDs   []int64    `json:"theme_ids"`
	SetIDs     []int64    `json:"set_ids"`
	LevelID    *int64     `json:"level_id,omitempty"`
	Difficulty *int       `json:"difficulty,omitempty"`
	Scope      Scope      `json:"scope"`
	Order      FetchOrder `json:"order"`
	Size       Size       `json:"size"`
}

// Source returns which content the configuration drills. Sets win over themes.
func (c Config) Source() Source {
	if len(c.SetIDs) > 0 {
		return SourceCards
	}
	return SourceWords
}

// SetupRequest is the raw setup form as posted by the client.
type SetupRequest struct {
	Modes      StringList `json:"modes"`
	ThemeIDs   []int64    `json:"theme_ids"`
	SetIDs     []int64    `json:"set_ids"`
	LevelID    *int64     `json:"level_id"`
	Difficulty *int       `json:"difficulty"`
	Scope      string     `json:"scope"`
	ReviewMode string     `json:"review_mode"`
	Size       FlexString `json:"size"`
}

// ParseSetup validates a setup form into a Config. Level ownership is checked
// later by the pool builder since it needs the store.
func ParseSetup(req SetupRequest) (Config, error) {
	themeIDs := uniqueIDs(req.ThemeIDs)
	setIDs := uniqueIDs(req.SetIDs)
	if len(themeIDs) == 0 && len(setIDs) == 0 {
		return Config{}, configError("", "select at least one theme or one set")
	}

	modes, err := ParseModes(req.Modes)
	if err != nil {
		return Config{}, err
	}
	order, err := ParseFetchOrder(req.ReviewMode)
	if err != nil {
		return Config{}, err
	}
	scope, err := ParseScope(req.Scope)
	if err != nil {
		return Config{}, err
	}
	size, err := ParseSize(string(req.Size))
	if err != nil {
		return Config{}, err
	}
	if req.Difficulty != nil && (*req.Difficulty < 1 || *req.Difficulty > 3) {
		return Config{}, configError("difficulty", "difficulty must be between 1 and 3")
	}

	cfg := Config{
		Modes:    modes,
		ThemeIDs: themeIDs,
		SetIDs:   setIDs,
		Scope:    scope,
		Order:    order,
		Size:     size,
	}
	if len(setIDs) == 0 {
		cfg.LevelID = req.LevelID
		cfg.Difficulty = req.Difficulty
	}
	return cfg, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StringList decodes either a JSON string or a JSON array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// FlexString decodes a JSON string or number into its textual form.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
