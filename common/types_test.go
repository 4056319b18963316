// Copyright 2025 The go-peernet Authors
// This file is part of the go-peernet library.
//
// The go-peernet library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-peernet library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-peernet library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicNameValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", true},
		{"simple", "peernet-global", false},
		{"single byte", "x", false},
		{"max length", strings.Repeat("t", MaxTopicNameLen), false},
		{"over max length", strings.Repeat("t", MaxTopicNameLen+1), true},
		{"multibyte counts bytes", strings.Repeat("é", 65), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, err := NewTopicName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "topic", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, topic.String())
		})
	}
}

func TestTopicNameUnchecked(t *testing.T) {
	topic := NewTopicNameUnchecked("")
	assert.Equal(t, "", topic.String())
}

func TestDhtKeyValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", true},
		{"simple", "valid-key", false},
		{"max length", strings.Repeat("k", MaxDhtKeyLen), false},
		{"over max length", strings.Repeat("k", MaxDhtKeyLen+1), true},
		{"null byte", "hello\x00world", true},
		{"leading null", "\x00", true},
		{"spaces allowed", "key with spaces", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := NewDhtKey(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "dht_key", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, key.String())
			assert.Equal(t, []byte(tt.input), key.Bytes())
		})
	}
}

func TestDhtValueValidation(t *testing.T) {
	ok, err := NewDhtValue(make([]byte, MaxDhtValueLen))
	require.NoError(t, err)
	assert.Equal(t, MaxDhtValueLen, ok.Len())

	_, err = NewDhtValue(make([]byte, MaxDhtValueLen+1))
	require.Error(t, err)

	empty, err := NewDhtValue(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	assert.True(t, EmptyDhtValue().IsEmpty())
}

func TestDhtValueBinary(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x02, 0xff, 0xfe}
	v, err := NewDhtValue(raw)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(raw, v.Bytes()))
}

func TestGossipPayloadValidation(t *testing.T) {
	ok, err := NewGossipPayload(make([]byte, MaxGossipPayloadLen))
	require.NoError(t, err)
	assert.Equal(t, MaxGossipPayloadLen, ok.Len())

	_, err = NewGossipPayload(make([]byte, MaxGossipPayloadLen+1))
	require.Error(t, err)

	p, err := GossipPayloadFromText("hello from node1")
	require.NoError(t, err)
	text, isText := p.Text()
	require.True(t, isText)
	assert.Equal(t, "hello from node1", text)
}

func TestGossipPayloadText(t *testing.T) {
	p, err := NewGossipPayload([]byte{0xff, 0xfe})
	require.NoError(t, err)
	_, isText := p.Text()
	assert.False(t, isText)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation failed: topic cannot be empty",
		(&ValidationError{Field: "topic", Reason: "cannot be empty"}).Error())
	assert.Equal(t, "send failed to network actor: channel closed",
		(&SendFailedError{Actor: "network"}).Error())
	assert.Equal(t, "channel closed: network actor, closed before start",
		(&ChannelClosedError{Actor: "network", Reason: "closed before start"}).Error())
	assert.Equal(t, "transport error: no transports configured",
		(&TransportError{Reason: "no transports configured"}).Error())
}
