// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/sekola/pkg/pagination"
)

/*
TestFromRequest verifies query parsing and the clamping of hostile values.
*/
func TestFromRequest(t *testing.T) {
	cases := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/students", pagination.DefaultPage, pagination.DefaultLimit},
		{"explicit", "/students?page=3&limit=25", 3, 25},
		{"zero_page", "/students?page=0", pagination.DefaultPage, pagination.DefaultLimit},
		{"negative_limit", "/students?limit=-5", pagination.DefaultPage, pagination.DefaultLimit},
		{"over_max_limit", "/students?limit=5000", pagination.DefaultPage, pagination.DefaultLimit},
		{"garbage", "/students?page=abc&limit=xyz", pagination.DefaultPage, pagination.DefaultLimit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := pagination.FromRequest(httptest.NewRequest("GET", tc.url, nil))
			assert.Equal(t, tc.wantPage, params.Page)
			assert.Equal(t, tc.wantLimit, params.Limit)
		})
	}
}

/*
TestOffset verifies the page-to-offset translation.
*/
func TestOffset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 0, pagination.Params{Page: 0, Limit: 10}.Offset())
	assert.Equal(t, 40, pagination.Params{Page: 5, Limit: 10}.Offset())
}

/*
TestNewMeta verifies the ceiling division behind TotalPages.
*/
func TestNewMeta(t *testing.T) {
	assert.Equal(t, 0, pagination.NewMeta(1, 10, 0).TotalPages)
	assert.Equal(t, 1, pagination.NewMeta(1, 10, 1).TotalPages)
	assert.Equal(t, 1, pagination.NewMeta(1, 10, 10).TotalPages)
	assert.Equal(t, 2, pagination.NewMeta(1, 10, 11).TotalPages)

	meta := pagination.NewMeta(2, 20, 45)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.Limit)
	assert.Equal(t, 45, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	// A zero limit cannot divide; the page count collapses to zero.
	assert.Equal(t, 0, pagination.NewMeta(1, 0, 45).TotalPages)
}
