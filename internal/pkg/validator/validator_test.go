package validator

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitor-geolocation/internal/pkg/errors"
)

type sample struct {
	Limit     int    `validate:"omitempty,min=1,max=10"`
	AxisOrder string `validate:"omitempty,axis_order"`
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&sample{Limit: 5, AxisOrder: "lonlat"}))
	assert.NoError(t, Validate(&sample{}))

	err := Validate(&sample{Limit: 50, AxisOrder: "xy"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidRequest))

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, "max", appErr.Details["Limit"])
	assert.Equal(t, "axis_order", appErr.Details["AxisOrder"])
}
