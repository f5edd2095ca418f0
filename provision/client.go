// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/constants"
	"github.com/devite-inc/devited/fault"
)

// Client - HTTP client for the archive service
type Client struct {
	log    *logger.L
	url    string
	client *http.Client

	// recently allocated archives, so a retried registration does not
	// allocate a second archive for the same owner
	recent *gocache.Cache
}

type provisionRequest struct {
	Owner string `json:"owner"`
}

type provisionReply struct {
	ArchiveId string `json:"archive_id"`
}

// NewClient - create a client for an archive service endpoint
func NewClient(url string) *Client {
	return &Client{
		log: logger.New("provision"),
		url: url,
		client: &http.Client{
			Timeout: constants.ProvisioningTimeout,
		},
		recent: gocache.New(constants.ProvisioningRetention, constants.ProvisioningRetention),
	}
}

// Provision - allocate an archive for an owner
func (c *Client) Provision(ctx context.Context, owner string) (string, error) {

	if id, ok := c.recent.Get(owner); ok {
		c.log.Infof("reusing archive: %q for: %q", id, owner)
		return id.(string), nil
	}

	data, err := json.Marshal(provisionRequest{Owner: owner})
	if nil != err {
		return "", err
	}

	request, err := http.NewRequest("POST", c.url, bytes.NewReader(data))
	if nil != err {
		return "", err
	}
	request = request.WithContext(ctx)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.client.Do(request)
	if nil != err {
		c.log.Errorf("archive service error: %s", err)
		return "", fault.ProvisioningFailed
	}
	defer response.Body.Close()

	if http.StatusOK != response.StatusCode {
		c.log.Errorf("archive service status: %d", response.StatusCode)
		return "", fault.ProvisioningFailed
	}

	var reply provisionReply
	err = json.NewDecoder(response.Body).Decode(&reply)
	if nil != err || "" == reply.ArchiveId {
		c.log.Errorf("archive service reply error: %s", err)
		return "", fault.ProvisioningFailed
	}

	c.recent.Set(owner, reply.ArchiveId, gocache.DefaultExpiration)

	c.log.Infof("allocated archive: %q for: %q", reply.ArchiveId, owner)
	return reply.ArchiveId, nil
}
