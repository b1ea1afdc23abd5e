package ports

import (
	"io"

	"goeda/domain/table"
)

// TableReader loads tabular data from a file or stream into a typed table
type TableReader interface {
	Read() (*table.Table, error)
	ReadFrom(src io.Reader, name string) (*table.Table, error)
}
