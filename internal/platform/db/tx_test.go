package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *recordingTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *recordingTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type stubBeginner struct {
	tx   *recordingTx
	err  error
	opts pgx.TxOptions
}

func (b *stubBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.opts = opts
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	beginner := &stubBeginner{tx: &recordingTx{}}

	require.NoError(t, WithTx(context.Background(), beginner, func(pgx.Tx) error { return nil }))
	assert.True(t, beginner.tx.committed)
	assert.Equal(t, pgx.ReadCommitted, beginner.opts.IsoLevel)
}

func TestWithTxRollsBackOnFailure(t *testing.T) {
	beginner := &stubBeginner{tx: &recordingTx{}}
	boom := errors.New("syntax error")

	err := WithTx(context.Background(), beginner, func(pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, beginner.tx.committed)
	assert.True(t, beginner.tx.rolledBack)
}

func TestWithTxReportsBeginFailure(t *testing.T) {
	beginner := &stubBeginner{err: errors.New("pool closed")}

	err := WithTx(context.Background(), beginner, func(pgx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.ErrorContains(t, err, "platform/db: begin tx: pool closed")
}
