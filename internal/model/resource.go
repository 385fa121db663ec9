package model

import (
	"bytes"
	"encoding/json"
)

const ResourceTypeEFS = "efs"

// Resource is an existing AWS resource attached to the cluster. Mountpoint
// and Sg are only meaningful, and required, for efs resources.
type Resource struct {
	Type       string `json:"type" validate:"required"`
	ID         string `json:"Id" validate:"required"`
	Mountpoint string `json:"Mountpoint,omitempty" validate:"required_if=Type efs,excluded_unless=Type efs"`
	Sg         string `json:"Sg,omitempty" validate:"required_if=Type efs,excluded_unless=Type efs"`
}

func (r Resource) IsEFS() bool {
	return r.Type == ResourceTypeEFS
}

// EFSMapping maps efs file system IDs to mount points. Iteration and
// serialization follow first insertion order; setting an existing ID
// replaces its mount point in place.
type EFSMapping struct {
	ids    []string
	mounts map[string]string
}

func (m *EFSMapping) Set(id, mountpoint string) {
	if m.mounts == nil {
		m.mounts = make(map[string]string)
	}
	if _, ok := m.mounts[id]; !ok {
		m.ids = append(m.ids, id)
	}
	m.mounts[id] = mountpoint
}

func (m *EFSMapping) Get(id string) (string, bool) {
	mp, ok := m.mounts[id]
	return mp, ok
}

func (m *EFSMapping) Len() int {
	return len(m.ids)
}

func (m *EFSMapping) IDs() []string {
	return append([]string(nil), m.ids...)
}

func (m *EFSMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.mounts[id])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String returns the JSON object form, or "" for an empty mapping.
func (m *EFSMapping) String() string {
	if m.Len() == 0 {
		return ""
	}
	b, err := m.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}
