/*
 * Copyright 2020 grant@lastweekend.com.au
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mqspy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersFixture = `
orders:
  - headers: {type: created}
    body:
      id: 1
      lines: [{sku: a, qty: 2}]
  - null
  - error: connection reset
audit: []
`

func TestLoadChannels(t *testing.T) {
	channels, err := LoadChannels(strings.NewReader(ordersFixture))
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Empty(t, channels["audit"])

	c := instance(t, NewBroker(channels))

	m, err := c.Fetch("orders")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"type": "created"}, m.Headers)
	assert.Equal(t, 1, m.Body["id"])
	assert.Equal(t, []interface{}{map[string]interface{}{"sku": "a", "qty": 2}}, m.Body["lines"])

	m, err = c.Fetch("orders")
	assert.NoError(t, err)
	assert.Nil(t, m)

	_, err = c.Fetch("orders")
	assert.EqualError(t, err, "connection reset")

	m, err = c.Fetch("audit")
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestLoadChannels_Empty(t *testing.T) {
	channels, err := LoadChannels(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestLoadChannels_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		expectedErr string
	}{
		{"NotAMap", "- a\n- b\n", "decoding channel fixture"},
		{"UnknownField", "orders:\n  - topic: x\n", "decoding channel fixture"},
		{"ErrorWithMessage", "orders:\n  - error: boom\n    body: {id: 1}\n", `channel "orders" entry 0`},
	}

	for _, tt := range tests {
		test := tt
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadChannels(strings.NewReader(test.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expectedErr)
		})
	}
}

func TestLoadChannelsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ordersFixture), 0o600))

	channels, err := LoadChannelsFile(path)
	require.NoError(t, err)
	assert.Len(t, channels["orders"], 3)

	_, err = LoadChannelsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
