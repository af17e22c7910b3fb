package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	point15kv = OperatingPoint{Voltage: "15KV", Current: "10", WorkingDistance: "8MM", Lens: "1"}
	params15  = TunedParams{GA: "12 -3", OC: "1A2", OF: "7F", ST: "100 200", STC: "80 90"}
)

func TestCapture_Lookup(t *testing.T) {
	c := New()

	c.Capture(point15kv, params15)

	got, ok := c.Lookup(point15kv)
	require.True(t, ok)
	assert.Equal(t, params15, got)
	assert.Equal(t, 1, c.Len())
}

func TestLookup_Absent(t *testing.T) {
	c := New()

	got, ok := c.Lookup(point15kv)
	assert.False(t, ok)
	assert.Equal(t, TunedParams{}, got)
}

func TestCapture_NoCrossContamination(t *testing.T) {
	// Each variant differs from point15kv in exactly one key field.
	variants := []OperatingPoint{
		{Voltage: "5KV", Current: "10", WorkingDistance: "8MM", Lens: "1"},
		{Voltage: "15KV", Current: "11", WorkingDistance: "8MM", Lens: "1"},
		{Voltage: "15KV", Current: "10", WorkingDistance: "39MM", Lens: "1"},
		{Voltage: "15KV", Current: "10", WorkingDistance: "8MM", Lens: "2"},
	}

	for i, p2 := range variants {
		t.Run(p2.String(), func(t *testing.T) {
			c := New()
			t2 := TunedParams{GA: fmt.Sprintf("ga-%d", i), OC: "oc", OF: "of", ST: "st", STC: "stc"}

			c.Capture(point15kv, params15)
			c.Capture(p2, t2)

			got1, ok := c.Lookup(point15kv)
			require.True(t, ok)
			assert.Equal(t, params15, got1)

			got2, ok := c.Lookup(p2)
			require.True(t, ok)
			assert.Equal(t, t2, got2)

			assert.Equal(t, 2, c.Len())
		})
	}
}

func TestCapture_Idempotent(t *testing.T) {
	c := New()

	c.Capture(point15kv, params15)
	c.Capture(point15kv, params15)

	got, ok := c.Lookup(point15kv)
	require.True(t, ok)
	assert.Equal(t, params15, got)
	assert.Equal(t, 1, c.Len())
}

func TestCapture_Overwrites(t *testing.T) {
	c := New()
	updated := TunedParams{GA: "0 0", OC: "0", OF: "0", ST: "0 0", STC: "0 0"}

	c.Capture(point15kv, params15)
	c.Capture(point15kv, updated)

	got, ok := c.Lookup(point15kv)
	require.True(t, ok)
	assert.Equal(t, updated, got)
}

func TestLookup_ExactStringMatch(t *testing.T) {
	c := New()
	c.Capture(point15kv, params15)

	// No numeric or case normalisation.
	_, ok := c.Lookup(OperatingPoint{Voltage: "15kV", Current: "10", WorkingDistance: "8MM", Lens: "1"})
	assert.False(t, ok)
	_, ok = c.Lookup(OperatingPoint{Voltage: "15KV", Current: "010", WorkingDistance: "8MM", Lens: "1"})
	assert.False(t, ok)
}

func TestPoints_Sorted(t *testing.T) {
	c := New()
	c.Capture(OperatingPoint{"5KV", "10", "8MM", "2"}, params15)
	c.Capture(OperatingPoint{"15KV", "10", "8MM", "1"}, params15)
	c.Capture(OperatingPoint{"5KV", "10", "8MM", "1"}, params15)
	c.Capture(OperatingPoint{"15KV", "09", "39MM", "1"}, params15)

	assert.Equal(t, []OperatingPoint{
		{"15KV", "09", "39MM", "1"},
		{"15KV", "10", "8MM", "1"},
		{"5KV", "10", "8MM", "1"},
		{"5KV", "10", "8MM", "2"},
	}, c.Points())
}

func TestReset(t *testing.T) {
	c := New()
	c.Capture(point15kv, params15)

	c.Reset()
	assert.Zero(t, c.Len())
	_, ok := c.Lookup(point15kv)
	assert.False(t, ok)
}

func TestConcurrentCapture(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := OperatingPoint{Voltage: fmt.Sprintf("%dKV", i), Current: "10", WorkingDistance: "8MM", Lens: "1"}
			c.Capture(p, params15)
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, c.Len())
}
