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
	"sync"

	"github.com/lwoggardner/spyobjects/spy"
)

// ErrDoubleInstantiation is returned when a Broker is asked for a second client factory
// or client instance.
var ErrDoubleInstantiation = errors.New("only one client factory or client instance can be taken from a broker double")

/*
Broker is a test double for a message queue.

Every Client built from one Broker shares its state: the channels, the read cursors, the
send and fetch logs and the last seen connection parameters.

Setup phase

Preload channels with NewBroker, then hand the code under test either the Factory
(ClientFactory) or a ready built Client (ClientInstance). Only one of the two may be
taken, once.

Exercise phase

Send appends a copy of the message to its channel. Fetch returns a copy of the next
unread entry of the channel, or nil when everything has been read.

Verify phase

Inspect SendLog, FetchLog, Channels and the connection parameters, or use ExpectSent and
ExpectFetched.
*/
type Broker struct {
	mutex        sync.Mutex
	channels     map[string][]Entry
	cursor       map[string]int
	sendLog      []string
	fetchLog     []string
	params       connection
	instantiated bool
	t            spy.T
}

type connection struct {
	url               string
	connectionFactory interface{}
	username          string
	password          string
}

// NewBroker builds a Broker whose channels start with the preloaded entries.
//
// Preloaded messages are copied, the caller's map and messages are never modified.
func NewBroker(preloaded map[string][]Entry) *Broker {
	return NewBrokerWith(preloaded)
}

// NewBrokerWith is NewBroker with configurators, eg EnableTrace
func NewBrokerWith(preloaded map[string][]Entry, configurators ...func(*Broker)) *Broker {
	b := &Broker{
		channels: make(map[string][]Entry, len(preloaded)),
		cursor:   make(map[string]int),
	}
	for channel, entries := range preloaded {
		stored := make([]Entry, len(entries))
		for i, e := range entries {
			if e.kind == messageEntry {
				e.message = e.message.Clone()
			}
			stored[i] = e
		}
		b.channels[channel] = stored
	}
	for _, c := range configurators {
		c(b)
	}
	return b
}

// EnableTrace returns a configurator that logs every send and fetch via t.Logf
func EnableTrace(t spy.T) func(*Broker) {
	return func(b *Broker) {
		b.t = t
	}
}

func (b *Broker) checkAndSetInstantiation() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.instantiated {
		return ErrDoubleInstantiation
	}
	b.instantiated = true
	return nil
}

// ClientFactory hands out the Factory for the code under test to build its own Client.
func (b *Broker) ClientFactory() (Factory, error) {
	if err := b.checkAndSetInstantiation(); err != nil {
		return nil, err
	}
	return b.connect, nil
}

// ClientInstance hands out a Client built with an empty url and no connection factory.
func (b *Broker) ClientInstance() (*Client, error) {
	if err := b.checkAndSetInstantiation(); err != nil {
		return nil, err
	}
	return b.connect("", nil), nil
}

func (b *Broker) connect(url string, connectionFactory interface{}, options ...ConnectOption) *Client {
	params := connection{url: url, connectionFactory: connectionFactory}
	for _, option := range options {
		option(&params)
	}

	b.mutex.Lock()
	b.params = params
	b.mutex.Unlock()

	c := newClient(b)
	b.tracef("client %s connected to %q", c.id, url)
	return c
}

func (b *Broker) send(c *Client, channel string, message *Message) {
	b.mutex.Lock()
	b.sendLog = append(b.sendLog, channel)
	b.channels[channel] = append(b.channels[channel], Deliver(message.Clone()))
	b.mutex.Unlock()

	b.tracef("client %s sent to %q: %v", c.id, channel, message)
}

func (b *Broker) fetch(c *Client, channel string) (*Message, error) {
	b.mutex.Lock()
	b.fetchLog = append(b.fetchLog, channel)
	position := b.cursor[channel]
	if len(b.channels) == 0 || position >= len(b.channels[channel]) {
		b.mutex.Unlock()
		b.tracef("client %s fetched from %q: nothing at position %d", c.id, channel, position)
		return nil, nil
	}
	entry := b.channels[channel][position]
	b.cursor[channel] = position + 1
	b.mutex.Unlock()

	b.tracef("client %s fetched from %q at position %d: %v", c.id, channel, position, entry)
	return entry.deliver()
}

func (b *Broker) tracef(format string, args ...interface{}) {
	if b.t != nil {
		b.t.Helper()
		b.t.Logf(format, args...)
	}
}

// SendLog returns the channel of every Send, in call order
func (b *Broker) SendLog() []string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]string{}, b.sendLog...)
}

// FetchLog returns the channel of every Fetch, in call order
func (b *Broker) FetchLog() []string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]string{}, b.fetchLog...)
}

// URL is the url the last Client was built with
func (b *Broker) URL() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.params.url
}

// ConnectionFactory is the connection factory the last Client was built with
func (b *Broker) ConnectionFactory() interface{} {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.params.connectionFactory
}

// Username is the username the last Client was built with, or ""
func (b *Broker) Username() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.params.username
}

// Password is the password the last Client was built with, or ""
func (b *Broker) Password() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.params.password
}

// Channels returns a copy of every channel's contents.
// Entries that are not messages (absence, producers) appear as nil.
func (b *Broker) Channels() map[string][]*Message {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	view := make(map[string][]*Message, len(b.channels))
	for channel, entries := range b.channels {
		messages := make([]*Message, len(entries))
		for i, e := range entries {
			messages[i] = e.message.Clone()
		}
		view[channel] = messages
	}
	return view
}

// Cursor is the position of the next Fetch on channel
func (b *Broker) Cursor(channel string) int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.cursor[channel]
}

// ExpectSent reports an error via t unless the number of sends to channel meets expect
func (b *Broker) ExpectSent(t spy.T, channel string, expect spy.Expectation) {
	t.Helper()
	expectLog(t, "sends to "+channel, b.SendLog(), channel, expect)
}

// ExpectFetched reports an error via t unless the number of fetches from channel meets expect
func (b *Broker) ExpectFetched(t spy.T, channel string, expect spy.Expectation) {
	t.Helper()
	expectLog(t, "fetches from "+channel, b.FetchLog(), channel, expect)
}

func expectLog(t spy.T, desc string, log []string, channel string, expect spy.Expectation) {
	t.Helper()
	count := 0
	for _, c := range log {
		if c == channel {
			count++
		}
	}
	if !expect.Met(count) {
		t.Errorf("%s expected %v, found %d", desc, expect, count)
	}
}

func (b *Broker) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return fmt.Sprintf("Broker(%d channels, %d sent, %d fetched)", len(b.channels), len(b.sendLog), len(b.fetchLog))
}
