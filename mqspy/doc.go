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

/*
Package mqspy provides a test double for a channel based message queue client.

 func Test_Consumer(t *testing.T) {
	broker := mqspy.NewBroker(map[string][]mqspy.Entry{
		"orders": {
			mqspy.Deliver(mqspy.NewMessage(nil, map[string]interface{}{"id": 1})),
			mqspy.Fail(errors.New("connection reset")),
		},
	})
	factory, err := broker.ClientFactory()
	require.NoError(t, err)

	// Exercise the consumer, which calls factory(url, connectionFactory, ...) and Fetch("orders")
	// ...

	broker.ExpectFetched(t, "orders", spy.Twice())
	assert.Equal(t, "amqp://test", broker.URL())
 }

Messages are copied on the way in and on the way out, so neither the producer nor a
consumer can change what is stored in the broker.
*/
package mqspy
