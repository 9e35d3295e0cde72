package repo

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"testing"

	"bookshelf/backend/app/apperr"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestWrapErr(t *testing.T) {
	assert.NoError(t, wrapErr("op", nil))
	assert.ErrorIs(t, wrapErr("op", gorm.ErrRecordNotFound), ErrNotFound)

	for _, err := range []error{
		context.DeadlineExceeded,
		driver.ErrBadConn,
		&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
	} {
		got := wrapErr("op", err)
		assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(got), "%v", err)
		assert.NotErrorIs(t, got, ErrNotFound)
	}

	plain := wrapErr("op", errors.New("syntax error"))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(plain))
	assert.Contains(t, plain.Error(), "op: syntax error")
}
