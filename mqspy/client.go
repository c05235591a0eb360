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
	"github.com/google/uuid"
)

// Connection is the client surface code under test should depend on
type Connection interface {
	Send(channel string, message *Message)
	Fetch(channel string) (*Message, error)
}

// Factory builds a Client, recording its arguments on the Broker
type Factory func(url string, connectionFactory interface{}, options ...ConnectOption) *Client

// ConnectOption sets optional connection parameters
type ConnectOption func(*connection)

// Username connects as username
func Username(username string) ConnectOption {
	return func(c *connection) { c.username = username }
}

// Password connects with password
func Password(password string) ConnectOption {
	return func(c *connection) { c.password = password }
}

// Client is one connection to a Broker. It holds no state of its own apart from its id.
type Client struct {
	broker *Broker
	id     uuid.UUID
}

var _ Connection = (*Client)(nil)

func newClient(b *Broker) *Client {
	return &Client{broker: b, id: uuid.New()}
}

// ID identifies this client in trace output
func (c *Client) ID() uuid.UUID {
	return c.id
}

// Send appends a copy of message to channel, creating the channel if needed.
// Later changes to message are not seen by the broker.
func (c *Client) Send(channel string, message *Message) {
	c.broker.send(c, channel, message)
}

/*
Fetch reads the next entry of channel and advances the channel's cursor, which is shared by
every client of the broker.

A message entry is returned as a copy. A producer entry returns whatever the producer
returns, including its error. An empty entry, or a channel with nothing left to read,
returns (nil, nil).
*/
func (c *Client) Fetch(channel string) (*Message, error) {
	return c.broker.fetch(c, channel)
}
