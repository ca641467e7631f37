package accounts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"pesa/internal/core"
	"pesa/internal/storage"
)

// record is one entry of the shared account index (users.json).
type record struct {
	Password  string     `json:"password"`
	DataFiles *dataFiles `json:"data_files,omitempty"`
}

// dataFiles accepts both spellings of the expense key written by older
// front ends. The plural key is always written.
type dataFiles struct {
	core.DataFiles
}

func (d *dataFiles) UnmarshalJSON(b []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Expenses = raw["expenses"]
	if d.Expenses == "" {
		d.Expenses = raw["expense"]
	}
	d.Income = raw["income"]
	d.Budgets = raw["budgets"]
	return nil
}

func (d dataFiles) MarshalJSON() ([]byte, error) {
	out := map[string]string{}
	if d.Expenses != "" {
		out["expenses"] = d.Expenses
	}
	if d.Income != "" {
		out["income"] = d.Income
	}
	if d.Budgets != "" {
		out["budgets"] = d.Budgets
	}
	return json.Marshal(out)
}

type index map[string]*record

func (ix index) user(username string) (core.User, bool) {
	rec, ok := ix[username]
	if !ok {
		return core.User{}, false
	}
	u := core.User{Username: username, PasswordHash: rec.Password}
	if rec.DataFiles != nil {
		u.Files = rec.DataFiles.DataFiles
	}
	return u, true
}

// backfill completes missing file locations and reports whether it changed anything.
func (ix index) backfill(username string) bool {
	rec := ix[username]
	if rec.DataFiles == nil {
		rec.DataFiles = &dataFiles{}
	}
	return rec.DataFiles.Backfill(username)
}

// readIndex loads users.json. A missing file is an empty index; a malformed
// one is reported so callers can decide whether to degrade or refuse.
func readIndex(path string) (index, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read account index: %v", core.ErrPersistence, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return index{}, nil
	}
	ix := index{}
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("%w: decode account index: %v", core.ErrPersistence, err)
	}
	for name, rec := range ix {
		if rec == nil {
			delete(ix, name)
		}
	}
	return ix, nil
}

func writeIndex(path string, ix index) error {
	data, err := json.MarshalIndent(ix, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode account index: %v", core.ErrPersistence, err)
	}
	err = storage.WriteFileAtomic(path, 0o600, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: save account index: %v", core.ErrPersistence, err)
	}
	return nil
}
