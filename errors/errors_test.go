package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppError_New(t *testing.T) {
	err := New(ErrCodeInternal, "boom")
	require.Equal(t, ErrCodeInternal, err.Code)
	require.Equal(t, "INTERNAL_ERROR: boom", err.Error())
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := Internal(fmt.Errorf("ring overflow"))
	require.True(t, strings.Contains(err.Error(), "ring overflow"))
	require.Equal(t, "ring overflow", stderrors.Unwrap(err).Error())
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	sentinel := StaleHandle("Where")
	other := StaleHandle("Select")
	require.True(t, stderrors.Is(other, sentinel))
	require.False(t, stderrors.Is(other, IteratorClosed()))
	require.False(t, stderrors.Is(fmt.Errorf("plain"), sentinel))
}

func TestAppError_WithDetail(t *testing.T) {
	err := InvalidArgument("count", "must not be negative").WithDetail("value", -1)
	require.Equal(t, "count", err.Details["argument"])
	require.Equal(t, -1, err.Details["value"])
}

func TestIsUsageCode(t *testing.T) {
	require.True(t, IsUsageCode(ErrCodeStaleHandle))
	require.True(t, IsUsageCode(ErrCodeConcurrentAdvance))
	require.False(t, IsUsageCode(ErrCodeCanceled))
	require.False(t, IsUsageCode(ErrCodeAggregate))
}

func TestAggregate_DropsNil(t *testing.T) {
	require.NoError(t, Aggregate(nil, nil))
}

func TestAggregate_SingleErrorUnchanged(t *testing.T) {
	e := fmt.Errorf("only")
	require.Same(t, e, Aggregate(nil, e, nil))
}

func TestAggregate_CollectsAll(t *testing.T) {
	e1 := fmt.Errorf("first")
	e2 := fmt.Errorf("second")
	err := Aggregate(e1, e2)

	var app *AppError
	require.True(t, stderrors.As(err, &app))
	require.Equal(t, ErrCodeAggregate, app.Code)
	require.Equal(t, []error{e1, e2}, Errors(err))
	require.ErrorIs(t, err, e1)
	require.ErrorIs(t, err, e2)
}

func TestAggregate_FlattensNested(t *testing.T) {
	e1 := fmt.Errorf("a")
	e2 := fmt.Errorf("b")
	e3 := fmt.Errorf("c")
	err := Aggregate(Aggregate(e1, e2), e3)
	require.Len(t, Errors(err), 3)
}

func TestErrors_Plain(t *testing.T) {
	e := fmt.Errorf("x")
	require.Equal(t, []error{e}, Errors(e))
	require.Nil(t, Errors(nil))
}

func TestIsCanceled(t *testing.T) {
	require.True(t, IsCanceled(context.Canceled))
	require.True(t, IsCanceled(context.DeadlineExceeded))
	require.True(t, IsCanceled(Canceled(nil)))
	require.True(t, IsCanceled(fmt.Errorf("wrapped: %w", context.Canceled)))
	require.False(t, IsCanceled(fmt.Errorf("plain")))
	require.False(t, IsCanceled(nil))
}

func TestCanceled_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("sibling failed")
	err := Canceled(cause)
	require.ErrorIs(t, err, cause)
}
