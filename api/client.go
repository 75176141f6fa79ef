/*
 * Copyright 2023 ICON Foundation
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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/labstack/echo/v4"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/database"
	"github.com/icon-project/weth-sdk/service"
)

type Client struct {
	*http.Client
	baseUrl        string
	baseApiUrl     string
	baseMonitorUrl string
	baseTrackerUrl string
	lv             log.Level
	l              log.Logger
}

func NewClient(url string, transportLogLevel log.Level, l log.Logger) *Client {
	l = Logger(l)
	url = strings.TrimSuffix(url, "/")
	return &Client{
		Client:         contract.NewHttpClient(transportLogLevel, l),
		baseUrl:        url,
		baseApiUrl:     url + GroupUrlApi,
		baseMonitorUrl: url + GroupUrlMonitor,
		baseTrackerUrl: url + GroupUrlTracker,
		lv:             contract.EnsureTransportLogLevel(transportLogLevel),
		l:              l,
	}
}

// apiUrl joins segments under the api group.
func (c *Client) apiUrl(segments ...string) string {
	return urlOf(append([]string{c.baseApiUrl}, segments...)...)
}

func (c *Client) newRequest(method, url string, body interface{}) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	return req, nil
}

// responseError decodes the ErrorResponse of a failed request.
func (c *Client) responseError(resp *http.Response) error {
	er := &ErrorResponse{}
	if err := UnmarshalBody(resp.Body, er); err != nil {
		c.l.Debugf("fail to decode ErrorResponse err:%+v", err)
		return errors.Errorf("server response not success, StatusCode:%d", resp.StatusCode)
	}
	return er
}

// do sends reqPtr as json body and decodes the response into respPtr if not nil.
func (c *Client) do(method, url string, reqPtr, respPtr interface{}) (*http.Response, error) {
	req, err := c.newRequest(method, url, reqPtr)
	if err != nil {
		c.l.Debugf("fail to newRequest err:%+v", err)
		return nil, err
	}
	c.l.Debugf("%s url=%s", method, req.URL)
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return resp, c.responseError(resp)
	}
	if respPtr == nil {
		return resp, resp.Body.Close()
	}
	if err = UnmarshalBody(resp.Body, respPtr); err != nil {
		c.l.Debugf("fail to decode resp err:%+v", err)
		return resp, err
	}
	return resp, nil
}

func (c *Client) GetResult(network string, id contract.TxID) (*Result, error) {
	r := &Result{}
	if _, err := c.do(http.MethodGet, c.apiUrl(network)+urlOf(UrlGetResult, fmt.Sprint(id)), nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

// invoke signs with s if the server responds ErrorCodeRequireSignature.
func (c *Client) invoke(url string, req *Request, s service.Signer) (contract.TxID, error) {
	var err error
	if s != nil {
		if req.Options, err = service.PrepareToSign(req.Options, s); err != nil {
			return nil, err
		}
	}
	var txID contract.TxID
	_, err = c.do(http.MethodPost, url, req, &txID)
	if s != nil && err != nil && contract.ErrorCodeRequireSignature.Equals(err) {
		er, ok := err.(*ErrorResponse)
		if !ok {
			return nil, err
		}
		rse := &RequireSignatureError{}
		if err = er.UnmarshalData(rse); err != nil {
			return nil, err
		}
		if req.Options, err = service.Sign(rse.Data, rse.Options, s); err != nil {
			return nil, err
		}
		_, err = c.do(http.MethodPost, url, req, &txID)
	}
	if err != nil {
		return nil, err
	}
	return txID, nil
}

func (c *Client) NetworkInfos() (NetworkInfos, error) {
	r := NetworkInfos{}
	if _, err := c.do(http.MethodGet, c.baseApiUrl, nil, &r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Client) ServiceInfos(network string) (ServiceInfos, error) {
	r := ServiceInfos{}
	if _, err := c.do(http.MethodGet, c.apiUrl(network), nil, &r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Client) RegisterContractService(network string, req *RegisterContractServiceRequest) error {
	_, err := c.do(http.MethodPost, c.apiUrl(network), req, nil)
	return err
}

func (c *Client) Spec(network, serviceOrAddress string) (*contract.Spec, error) {
	r := &contract.Spec{}
	if _, err := c.do(http.MethodGet, c.apiUrl(network, serviceOrAddress), nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Client) Invoke(network, serviceOrAddress, method string, req *Request, s service.Signer) (contract.TxID, error) {
	return c.invoke(c.apiUrl(network, serviceOrAddress, method), req, s)
}

func (c *Client) Call(network, serviceOrAddress, method string, req *Request, resp interface{}) (*http.Response, error) {
	return c.do(http.MethodGet, c.apiUrl(network, serviceOrAddress, method), req, resp)
}

func (c *Client) Static(network, serviceOrAddress, method string, req *Request, resp interface{}) (*http.Response, error) {
	return c.do(http.MethodPost, c.apiUrl(network, serviceOrAddress, method)+UrlStatic, req, resp)
}

func (c *Client) EstimateGas(network, serviceOrAddress, method string, req *Request) (contract.Integer, error) {
	var r contract.Integer
	if _, err := c.do(http.MethodPost, c.apiUrl(network, serviceOrAddress, method)+UrlEstimate, req, &r); err != nil {
		return "", err
	}
	return r, nil
}

func (c *Client) Populate(network, serviceOrAddress, method string, req *Request) (*contract.PopulatedTransaction, error) {
	r := &contract.PopulatedTransaction{}
	if _, err := c.do(http.MethodPost, c.apiUrl(network, serviceOrAddress, method)+UrlPopulate, req, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Client) TrackerInfos() (TrackerInfos, error) {
	r := TrackerInfos{}
	if _, err := c.do(http.MethodGet, c.baseTrackerUrl, nil, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// TrackerEvents returns the page of stored events, each of Content is decoded into a map.
func (c *Client) TrackerEvents(svc string, req *TrackerFindRequest) (*database.Page[any], error) {
	q := url.Values{}
	set := func(k, v string) {
		if len(v) > 0 && v != "0" {
			q.Set(k, v)
		}
	}
	set("network", req.Network)
	set("name", req.Name)
	set("address", req.Address)
	set("page", strconv.FormatUint(uint64(req.Page), 10))
	set("size", strconv.FormatUint(uint64(req.Size), 10))
	set("sort", req.Sort)
	u := urlOf(c.baseTrackerUrl, svc) + UrlTrackerEvents
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	r := &database.Page[any]{}
	if _, err := c.do(http.MethodGet, u, nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Client) TrackerSummary(svc string) ([]any, error) {
	var r []any
	if _, err := c.do(http.MethodGet, urlOf(c.baseTrackerUrl, svc)+UrlTrackerSummary, nil, &r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Client) wsConnect(ctx context.Context, url string) (*wsConn, error) {
	url = strings.Replace(url, "http", "ws", 1)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if err == websocket.ErrBadHandshake {
			err = c.responseError(resp)
		}
		c.l.Debugf("fail to Dial url:%s err:%+v", url, err)
		return nil, err
	}
	wc := newWsConn(conn, conn.LocalAddr().String(), c.lv, c.l)
	pingHandler := conn.PingHandler()
	conn.SetPingHandler(func(appData string) error {
		c.l.Logf(c.lv, "[%s]wsPing=%s", wc.id, appData)
		return pingHandler(appData)
	})
	return wc, nil
}

// MonitorEvent calls cb for every event until ctx is done or cb returns an error.
func (c *Client) MonitorEvent(ctx context.Context, network, serviceOrAddress string, req *MonitorRequest, cb func(e *Event) error) error {
	conn, err := c.wsConnect(ctx, urlOf(c.baseMonitorUrl, network, serviceOrAddress)+UrlMonitorEvent)
	if err != nil {
		return err
	}
	defer conn.close()
	if err = conn.request(ctx, req); err != nil {
		return err
	}
	return conn.readLoop(ctx, func(b []byte) error {
		e := &Event{}
		if err := json.Unmarshal(b, e); err != nil {
			return err
		}
		return cb(e)
	})
}
