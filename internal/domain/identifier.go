package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// PendingPrefix marks identifiers assigned locally to items the Tarabaho API
// has not stored yet. Server identifiers are always numeric.
const PendingPrefix = "new-"

type IDKind uint8

const (
	IDUnset IDKind = iota
	IDPending
	IDPersisted
)

// ItemID identifies an item inside a portfolio draft. It is either Pending
// (a local token, created by the editor) or Persisted (the server's id).
type ItemID struct {
	kind   IDKind
	local  string
	server int64
}

func NewPendingID() ItemID {
	return ItemID{kind: IDPending, local: PendingPrefix + uuid.NewString()}
}

func PersistedID(id int64) ItemID {
	return ItemID{kind: IDPersisted, server: id}
}

// ParseItemID accepts "new-..." tokens, decimal server ids, and the empty
// string (unset).
func ParseItemID(s string) (ItemID, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ItemID{}, nil
	case strings.HasPrefix(s, PendingPrefix):
		if len(s) == len(PendingPrefix) {
			return ItemID{}, fmt.Errorf("invalid pending id %q", s)
		}
		return ItemID{kind: IDPending, local: s}, nil
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			return ItemID{}, fmt.Errorf("invalid item id %q", s)
		}
		return PersistedID(n), nil
	}
}

func (id ItemID) Kind() IDKind      { return id.kind }
func (id ItemID) IsZero() bool      { return id.kind == IDUnset }
func (id ItemID) IsPending() bool   { return id.kind == IDPending }
func (id ItemID) IsPersisted() bool { return id.kind == IDPersisted }

// ServerID returns the durable id and true for persisted ids.
func (id ItemID) ServerID() (int64, bool) {
	if id.kind != IDPersisted {
		return 0, false
	}
	return id.server, true
}

// Wire is the value sent to the Tarabaho API: nil asks it to create the
// child, a server id asks it to update that child.
func (id ItemID) Wire() *int64 {
	if id.kind != IDPersisted {
		return nil
	}
	v := id.server
	return &v
}

func (id ItemID) String() string {
	switch id.kind {
	case IDPending:
		return id.local
	case IDPersisted:
		return strconv.FormatInt(id.server, 10)
	default:
		return ""
	}
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case IDPending:
		return json.Marshal(id.local)
	case IDPersisted:
		return []byte(strconv.FormatInt(id.server, 10)), nil
	default:
		return []byte("null"), nil
	}
}

func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ItemID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseItemID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid item id %s: %w", data, err)
	}
	if n <= 0 {
		*id = ItemID{}
		return nil
	}
	*id = PersistedID(n)
	return nil
}
