// Copyright 2024 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package stat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	a := assert.New(t)
	set := newSet()
	a.Empty(set.Collect(All))

	v0 := set.New("v0", "desc0")
	a.Equal(0, v0.Val())
	v0.Add(1)
	a.Equal(1, v0.Val())
	v0.Add(1)
	a.Equal(2, v0.Val())

	vv1 := 0
	v1 := set.New("v1", "desc1", Console, func() int { return vv1 })
	a.Equal(0, v1.Val())
	vv1 = 11
	a.Equal(11, v1.Val())
	a.Panics(func() { v1.Add(1) })

	v2 := set.New("v2", "desc2", Console, func(v int, period time.Duration) string {
		return "custom"
	})
	v2.Add(100)

	a.Equal([]UI{
		{Name: "v1", Desc: "desc1", Level: Console, Value: "11", V: 11},
		{Name: "v2", Desc: "desc2", Level: Console, Value: "custom", V: 100},
	}, set.Collect(Console))
	a.Len(set.Collect(All), 3)
	a.Panics(func() { set.New("v0", "again") })
	a.Panics(func() { set.New("v3", "bad", 1.5) })
}

func TestDistribution(t *testing.T) {
	set := newSet()
	v := set.New("depth", "call stack depth", Distribution{})
	assert.Equal(t, 0, v.Val())
	for _, x := range []int{1, 2, 3, 4, 5} {
		v.Add(x)
	}
	assert.Equal(t, 3, v.Val())
	ui := set.Collect(All)
	require.Len(t, ui, 1)
	assert.True(t, strings.HasPrefix(ui[0].Value, "mean 3 "), ui[0].Value)
	assert.Contains(t, ui[0].Value, "5 samples")
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "100 (10/sec)", formatRate(100, 10*time.Second))
	assert.Equal(t, "5 (30/min)", formatRate(5, 10*time.Second))
	assert.Equal(t, "1 (360/hour)", formatRate(1, 10*time.Second))
}

func TestPrometheusTextfile(t *testing.T) {
	set := newSet()
	v := set.New("analyzed", "number of analyzed dumps", Prometheus("test_analyzed_total"))
	v.Add(7)
	file := filepath.Join(t.TempDir(), "metrics.prom")
	old := global
	global = set
	defer func() { global = old }()
	require.NoError(t, WriteTextfile(file))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# HELP test_analyzed_total number of analyzed dumps")
	assert.Contains(t, string(data), "test_analyzed_total 7")
}
