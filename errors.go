package mandel

import "errors"

var (
	// ErrInvalidGeometry reports zero or negative pixel dimensions.
	ErrInvalidGeometry = errors.New("mandel: invalid pixel geometry")

	// ErrInvalidViewport reports a viewport with non-finite bounds or with
	// min >= max on either axis.
	ErrInvalidViewport = errors.New("mandel: invalid viewport")

	// ErrInvalidDirection reports a zoom direction other than ZoomIn or ZoomOut.
	ErrInvalidDirection = errors.New("mandel: invalid zoom direction")

	// ErrInvalidParams reports render parameters outside their domain,
	// such as a non-positive iteration budget.
	ErrInvalidParams = errors.New("mandel: invalid render parameters")
)

// ErrClosed is returned by Controller methods after Close.
var ErrClosed = errors.New("mandel: controller closed")
