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
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type fixtureEntry struct {
	Headers map[string]interface{} `yaml:"headers"`
	Body    map[string]interface{} `yaml:"body"`
	Error   string                 `yaml:"error"`
}

/*
LoadChannels reads preloaded channels from YAML, for use with NewBroker.

 orders:
   - headers: {type: created}
     body: {id: 1}
   - null            # fetched as no message
   - error: boom     # Fetch fails with an error "boom"
 audit: []
*/
func LoadChannels(r io.Reader) (map[string][]Entry, error) {
	var raw map[string][]*fixtureEntry

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding channel fixture: %w", err)
	}

	channels := make(map[string][]Entry, len(raw))
	for channel, items := range raw {
		entries := make([]Entry, len(items))
		for i, item := range items {
			switch {
			case item == nil:
				entries[i] = Empty()
			case item.Error != "":
				if item.Headers != nil || item.Body != nil {
					return nil, fmt.Errorf("channel %q entry %d: an error entry cannot also carry a message", channel, i)
				}
				entries[i] = Fail(errors.New(item.Error))
			default:
				entries[i] = Deliver(NewMessage(item.Headers, item.Body))
			}
		}
		channels[channel] = entries
	}
	return channels, nil
}

// LoadChannelsFile is LoadChannels reading from the named file
func LoadChannelsFile(path string) (map[string][]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening channel fixture: %w", err)
	}
	defer f.Close()
	return LoadChannels(f)
}
