package domain

import "time"

// FileMeta summarises a generated file.
type FileMeta struct {
	RowCount        int    `json:"rowCount"`
	ColumnCount     int    `json:"columnCount"`
	HasHeader       bool   `json:"hasHeader"`
	IsValidBatch    bool   `json:"isValidBatch"`
	InvalidRowCount int    `json:"invalidRowCount"`
	Extension       string `json:"extension"`
}

// GeneratedFile is the immutable result of one generation request.
type GeneratedFile struct {
	Content  string   `json:"content"`
	Filename string   `json:"filename"`
	Meta     FileMeta `json:"meta"`
}

// StoredFile describes a file written by the persistence layer.
type StoredFile struct {
	Namespace string    `json:"namespace"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"modTime"`
}
