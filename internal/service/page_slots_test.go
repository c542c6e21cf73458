package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPageSlots_OnePerPage(t *testing.T) {
	var p pageSlots

	release, ok := p.acquire("page-1")
	require.True(t, ok)
	_, ok = p.acquire("page-1")
	require.False(t, ok, "second acquire of the same page must fail")

	other, ok := p.acquire("page-2")
	require.True(t, ok)
	other()

	release()
	release() // releasing twice is harmless

	again, ok := p.acquire("page-1")
	require.True(t, ok)
	again()
}

func TestPageSlots_DrainWaitsForRelease(t *testing.T) {
	var p pageSlots
	require.NoError(t, p.drain(context.Background()), "nothing held")

	release, ok := p.acquire("page-a")
	require.True(t, ok)

	done := make(chan error, 1)
	go func() { done <- p.drain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("drain returned while a slot was held")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("drain did not return after release")
	}
}

func TestPageSlots_DrainHonoursContext(t *testing.T) {
	var p pageSlots
	release, _ := p.acquire("page-a")
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, p.drain(ctx), context.DeadlineExceeded)
}

func TestCheckpointer_SaveRefusesBusyPage(t *testing.T) {
	c := &Checkpointer{}
	release, ok := c.running.acquire("page-a")
	require.True(t, ok)
	defer release()

	_, err := c.Save(context.Background(), "page-a", "")
	require.True(t, errors.Is(err, ErrCheckpointBusy))
}
