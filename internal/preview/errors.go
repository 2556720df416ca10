package preview

import "errors"

var (
	ErrAlreadyPreparing = errors.New("preview: prepare already in progress")
	ErrNotPrepared      = errors.New("preview: operation requires a prepared clip")
	ErrPrepareCancelled = errors.New("preview: prepare was cancelled")
	ErrNotSeekable      = errors.New("preview: data source does not advertise seekability")
	ErrNoDataSource      = errors.New("preview: no data source configured")
)
