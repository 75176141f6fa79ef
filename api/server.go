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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/database"
	"github.com/icon-project/weth-sdk/service"
	"github.com/icon-project/weth-sdk/tracker"
)

const (
	PathParamNetwork          = "network"
	PathParamTxID             = "txID"
	PathParamServiceOrAddress = "serviceOrAddress"
	PathParamMethod           = "method"
	PathParamService          = "service"
	ContextAdaptor            = "adaptor"
	ContextService            = "service"
	ContextRequest            = "request"
	ContextMethod             = "method"
	ContextTracker            = "tracker"
	GroupUrlApi               = "/api"
	GroupUrlMonitor           = "/monitor"
	GroupUrlTracker           = "/tracker"
	UrlOpenAPI                = "/openapi"
	UrlGetResult              = "/result"
	UrlStatic                 = "/static"
	UrlEstimate               = "/estimate"
	UrlPopulate               = "/populate"
	UrlMonitorEvent           = "/event"
	UrlTrackerEvents          = "/events"
	UrlTrackerSummary         = "/summary"
	WsHandshakeTimeout        = time.Second * 3
)

func Logger(l log.Logger) log.Logger {
	return l.WithFields(log.Fields{log.FieldKeyModule: "api"})
}

type Server struct {
	e    *echo.Echo
	addr string
	aMap map[string]contract.Adaptor
	sMap map[string]service.Service
	tMap map[string]tracker.Tracker
	oas  *OpenAPIDocs
	mtx  sync.RWMutex
	once sync.Once
	u    websocket.Upgrader
	lv   log.Level
	l    log.Logger
}

func NewServer(addr string, transportLogLevel log.Level, l log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HttpErrorHandler
	l = Logger(l)
	return &Server{
		e:    e,
		addr: addr,
		aMap: make(map[string]contract.Adaptor),
		sMap: make(map[string]service.Service),
		tMap: make(map[string]tracker.Tracker),
		oas:  NewOpenAPIDocs(l),
		lv:   contract.EnsureTransportLogLevel(transportLogLevel),
		l:    l,
	}
}

func (s *Server) AddAdaptor(network string, a contract.Adaptor) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.aMap[network] = a
	s.oas.PutNetwork(network, a.NetworkType())
}

func (s *Server) GetAdaptor(network string) contract.Adaptor {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.aMap[network]
}

func (s *Server) AddService(svc service.Service) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.sMap[svc.Name()] = svc
	s.oas.PutService(svc)
}

func (s *Server) GetService(name string) service.Service {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.sMap[name]
}

func (s *Server) AddTracker(t tracker.Tracker) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.tMap[t.Name()] = t
}

func (s *Server) GetTracker(name string) tracker.Tracker {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.tMap[name]
}

func (s *Server) register() {
	s.once.Do(func() {
		// CORS middleware
		s.e.Use(
			middleware.CORSWithConfig(middleware.CORSConfig{
				MaxAge: 3600,
			}),
			middleware.Recover())
		s.RegisterAPIHandler(s.e.Group(GroupUrlApi))
		s.RegisterMonitorHandler(s.e.Group(GroupUrlMonitor))
		s.RegisterTrackerHandler(s.e.Group(GroupUrlTracker))
		s.RegisterOpenAPIHandler(s.e.Group(UrlOpenAPI))
	})
}

// Handler returns the http.Handler with every route registered.
func (s *Server) Handler() http.Handler {
	s.register()
	return s.e
}

func (s *Server) Start() error {
	s.l.Infoln("starting the server")
	s.register()
	return s.e.Start(s.addr)
}

type Request struct {
	Params  contract.Params  `json:"params" query:"params"`
	Options contract.Options `json:"options" query:"options"`
}

type ContractRequest struct {
	Request
	Spec json.RawMessage `json:"spec,omitempty" query:"spec"`
}

type NetworkInfo struct {
	Name        string `json:"name"`
	NetworkType string `json:"networkType"`
}

type NetworkInfos []NetworkInfo

type ServiceInfo struct {
	Name     string   `json:"name"`
	Networks []string `json:"networks"`
}

type ServiceInfos []ServiceInfo

type Result struct {
	Success     bool             `json:"success"`
	TxID        contract.TxID    `json:"txID"`
	BlockID     contract.BlockID `json:"blockID"`
	BlockHeight int64            `json:"blockHeight"`
	Failure     interface{}      `json:"failure,omitempty"`
	Raw         interface{}      `json:"raw"`
}

func NewResult(r contract.TxResult) *Result {
	return &Result{
		Success:     r.Success(),
		TxID:        r.TxID(),
		BlockID:     r.BlockID(),
		BlockHeight: r.BlockHeight(),
		Failure:     r.Failure(),
		Raw:         r,
	}
}

func (s *Server) bodyDump() echo.MiddlewareFunc {
	return middleware.BodyDump(func(c echo.Context, reqBody []byte, resBody []byte) {
		s.l.Debugf("url=%s", c.Request().RequestURI)
		s.l.Logf(s.lv, "request=%s", reqBody)
		s.l.Logf(s.lv, "response=%s", resBody)
	})
}

func (s *Server) networkInfos() NetworkInfos {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	r := make(NetworkInfos, 0, len(s.aMap))
	for network, a := range s.aMap {
		r = append(r, NetworkInfo{Name: network, NetworkType: a.NetworkType()})
	}
	sort.Slice(r, func(i, j int) bool {
		return r[i].Name < r[j].Name
	})
	return r
}

func (s *Server) serviceInfos(network string) ServiceInfos {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	r := make(ServiceInfos, 0)
	for name, svc := range s.sMap {
		networks := svc.Networks()
		for _, n := range networks {
			if n == network {
				r = append(r, ServiceInfo{Name: name, Networks: networks})
				break
			}
		}
	}
	sort.Slice(r, func(i, j int) bool {
		return r[i].Name < r[j].Name
	})
	return r
}

func (s *Server) RegisterAPIHandler(g *echo.Group) {
	g.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.networkInfos())
	})
	generalApi := g.Group("/:"+PathParamNetwork, s.bodyDump(), lookup(ContextAdaptor, func(c echo.Context) (interface{}, error) {
		p := c.Param(PathParamNetwork)
		if a := s.GetAdaptor(p); a != nil {
			return a, nil
		}
		return nil, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Network(%s) not found", p))
	}))
	generalApi.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.serviceInfos(c.Param(PathParamNetwork)))
	})
	generalApi.POST("", func(c echo.Context) error {
		req := &RegisterContractServiceRequest{}
		if err := UnmarshalRequestBody(c, req); err != nil {
			s.l.Debugf("fail to UnmarshalRequestBody err:%+v", err)
			return echo.ErrBadRequest
		}
		if err := c.Validate(req); err != nil {
			s.l.Debugf("fail to Validate err:%+v", err)
			return err
		}
		a := c.Get(ContextAdaptor).(contract.Adaptor)
		svc, err := NewContractService(a, req.Spec, req.Address, c.Param(PathParamNetwork), s.l)
		if err != nil {
			s.l.Debugf("fail to NewContractService err:%+v", err)
			return err
		}
		s.AddService(svc)
		return c.NoContent(http.StatusOK)
	})
	generalApi.GET(UrlGetResult+"/:"+PathParamTxID, func(c echo.Context) error {
		a := c.Get(ContextAdaptor).(contract.Adaptor)
		p := c.Param(PathParamTxID)
		ret, err := a.GetResult(p)
		if err != nil {
			s.l.Debugf("fail to GetResult err:%+v", err)
			return err
		}
		return c.JSON(http.StatusOK, NewResult(ret))
	})

	serviceApi := generalApi.Group("/:"+PathParamServiceOrAddress, lookup(ContextService, s.resolveService))
	serviceApi.GET("", func(c echo.Context) error {
		svc := c.Get(ContextService).(service.Service)
		spec, err := svc.Spec(c.Param(PathParamNetwork))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, spec)
	})

	methodApi := serviceApi.Group("/:"+PathParamMethod, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := &Request{}
			if err := BindQueryParamsAndUnmarshalBody(c, req); err != nil {
				s.l.Debugf("fail to BindQueryParamsAndUnmarshalBody err:%+v", err)
				return echo.ErrBadRequest
			}
			if err := c.Validate(req); err != nil {
				s.l.Debugf("fail to Validate err:%+v", err)
				return err
			}
			c.Set(ContextRequest, req)

			svc := c.Get(ContextService).(service.Service)
			spec, err := svc.Spec(c.Param(PathParamNetwork))
			if err != nil {
				return err
			}
			pm := c.Param(PathParamMethod)
			m, found := spec.MethodMap[pm]
			if !found {
				return echo.NewHTTPError(http.StatusNotFound,
					fmt.Sprintf("Method(%s) not found", pm))
			}
			c.Set(ContextMethod, m)
			return next(c)
		}
	})
	methodApi.POST("", s.methodHandler("Invoke", false, true,
		func(svc service.Service, network, method string, req *Request) (interface{}, error) {
			return svc.Invoke(network, method, req.Params, req.Options)
		}))
	methodApi.GET("", s.methodHandler("Call", true, false,
		func(svc service.Service, network, method string, req *Request) (interface{}, error) {
			return svc.Call(network, method, req.Params, req.Options)
		}))
	methodApi.POST(UrlStatic, s.methodHandler("Simulate", true, true,
		func(svc service.Service, network, method string, req *Request) (interface{}, error) {
			return svc.Simulate(network, method, req.Params, req.Options)
		}))
	methodApi.POST(UrlEstimate, s.methodHandler("EstimateGas", true, true,
		func(svc service.Service, network, method string, req *Request) (interface{}, error) {
			return svc.EstimateGas(network, method, req.Params, req.Options)
		}))
	methodApi.POST(UrlPopulate, s.methodHandler("Populate", true, true,
		func(svc service.Service, network, method string, req *Request) (interface{}, error) {
			return svc.Populate(network, method, req.Params, req.Options)
		}))
}

type methodFunc func(svc service.Service, network, method string, req *Request) (interface{}, error)

// methodHandler responds the result of f as json. A method rejected by
// readonly or writable gets StatusMethodNotAllowed.
func (s *Server) methodHandler(name string, readonly, writable bool, f methodFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		m := c.Get(ContextMethod).(*contract.MethodSpec)
		if m.ReadOnly && !readonly || !m.ReadOnly && !writable {
			allowed := http.MethodPost
			if m.ReadOnly {
				allowed = http.MethodGet
			}
			return echo.NewHTTPError(http.StatusMethodNotAllowed,
				fmt.Sprintf("HttpMethod(%s) not allowed, use %s", c.Request().Method, allowed))
		}
		ret, err := f(c.Get(ContextService).(service.Service), c.Param(PathParamNetwork),
			c.Param(PathParamMethod), c.Get(ContextRequest).(*Request))
		if err != nil {
			s.l.Debugf("fail to %s method:%s err:%+v", name, m.Name, err)
			return err
		}
		return c.JSON(http.StatusOK, ret)
	}
}

// lookup sets the value found by f to the context with key.
func lookup(key string, f func(c echo.Context) (interface{}, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, err := f(c)
			if err != nil {
				return err
			}
			c.Set(key, v)
			return next(c)
		}
	}
}

// resolveService finds by the name, then by the contract address on the network.
func (s *Server) resolveService(c echo.Context) (interface{}, error) {
	p := c.Param(PathParamServiceOrAddress)
	svc := s.GetService(p)
	if svc == nil {
		network, address := c.Param(PathParamNetwork), contract.Address(p)
		if svc = s.GetService(ContractServiceName(network, address)); svc == nil {
			return nil, echo.NewHTTPError(http.StatusNotFound,
				fmt.Sprintf("Service(%s) not found", p))
		}
	}
	return svc, nil
}

type MonitorRequest struct {
	NameToParams map[string][]contract.Params `json:"nameToParams" validate:"required"`
	Height       int64                        `json:"height"`
}

// Event is the message of the event monitor.
type Event struct {
	Name        string           `json:"name"`
	Signature   string           `json:"signature"`
	Address     contract.Address `json:"address"`
	Params      contract.Params  `json:"params"`
	BlockID     contract.BlockID `json:"blockID"`
	BlockHeight int64            `json:"blockHeight"`
	TxID        contract.TxID    `json:"txID"`
	Identifier  int              `json:"identifier"`
}

func NewEvent(e contract.Event) *Event {
	return &Event{
		Name:        e.Name(),
		Signature:   e.Signature(),
		Address:     e.Address(),
		Params:      e.Params(),
		BlockID:     e.BlockID(),
		BlockHeight: e.BlockHeight(),
		TxID:        e.TxID(),
		Identifier:  e.Identifier(),
	}
}

func (s *Server) wsConnect(c echo.Context) (*wsConn, error) {
	conn, err := s.u.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.l.Debugf("fail to Upgrade err:%+v", err)
		return nil, err
	}
	return newWsConn(conn, conn.RemoteAddr().String(), s.lv, s.l), nil
}

func (s *Server) RegisterMonitorHandler(g *echo.Group) {
	monitorApi := g.Group("/:"+PathParamNetwork+"/:"+PathParamServiceOrAddress,
		lookup(ContextService, s.resolveService))
	monitorApi.GET(UrlMonitorEvent, func(c echo.Context) error {
		conn, err := s.wsConnect(c)
		if err != nil {
			return err
		}
		defer conn.close()
		svc := c.Get(ContextService).(service.Service)
		network := c.Param(PathParamNetwork)
		var efs []contract.EventFilter
		req := &MonitorRequest{}
		err = conn.accept(req, func() (err error) {
			if err = c.Validate(req); err != nil {
				return err
			}
			efs, err = svc.EventFilters(network, req.NameToParams)
			return err
		})
		if err != nil {
			s.l.Debugf("[%s]fail to handshake err:%+v", conn.id, err)
			return nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			defer cancel()
			_ = conn.readLoop(ctx, func(b []byte) error {
				return nil
			})
		}()
		err = svc.MonitorEvent(ctx, network, func(e contract.Event) error {
			return conn.writeJSON(NewEvent(e))
		}, efs, req.Height)
		if err != nil {
			s.l.Debugf("[%s]fail to MonitorEvent req:%+v err:%+v", conn.id, req, err)
		}
		return nil
	})
}

type TrackerInfo struct {
	Name     string                     `json:"name"`
	Networks []tracker.NetworkOfTracker `json:"networks"`
}

type TrackerInfos []TrackerInfo

type TrackerFindRequest struct {
	Network string `json:"network,omitempty" query:"network"`
	Name    string `json:"name,omitempty" query:"name"`
	Address string `json:"address,omitempty" query:"address"`
	Page    uint   `json:"page,omitempty" query:"page"`
	Size    uint   `json:"size,omitempty" query:"size" validate:"lte=1000"`
	Sort    string `json:"sort,omitempty" query:"sort"`
}

func (r *TrackerFindRequest) FindParam() tracker.FindParam {
	return tracker.FindParam{
		Network: r.Network,
		Name:    r.Name,
		Address: r.Address,
		Pageable: database.Pageable{
			Page: r.Page,
			Size: r.Size,
			Sort: r.Sort,
		},
	}
}

func (s *Server) trackerInfos() TrackerInfos {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	r := make(TrackerInfos, 0, len(s.tMap))
	for name, t := range s.tMap {
		r = append(r, TrackerInfo{Name: name, Networks: t.Networks()})
	}
	sort.Slice(r, func(i, j int) bool {
		return r[i].Name < r[j].Name
	})
	return r
}

func (s *Server) RegisterTrackerHandler(g *echo.Group) {
	g.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.trackerInfos())
	})
	trackerApi := g.Group("/:"+PathParamService, s.bodyDump(), lookup(ContextTracker, func(c echo.Context) (interface{}, error) {
		p := c.Param(PathParamService)
		if t := s.GetTracker(p); t != nil {
			return t, nil
		}
		return nil, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Tracker(%s) not found", p))
	}))
	trackerApi.GET(UrlTrackerEvents, func(c echo.Context) error {
		req := &TrackerFindRequest{}
		if err := c.Bind(req); err != nil {
			s.l.Debugf("fail to Bind err:%+v", err)
			return echo.ErrBadRequest
		}
		if err := c.Validate(req); err != nil {
			return err
		}
		t := c.Get(ContextTracker).(tracker.Tracker)
		ret, err := t.Find(req.FindParam())
		if err != nil {
			s.l.Debugf("fail to Find err:%+v", err)
			return err
		}
		return c.JSON(http.StatusOK, ret)
	})
	trackerApi.GET(UrlTrackerSummary, func(c echo.Context) error {
		t := c.Get(ContextTracker).(tracker.Tracker)
		ret, err := t.Summary()
		if err != nil {
			s.l.Debugf("fail to Summary err:%+v", err)
			return err
		}
		return c.JSON(http.StatusOK, ret)
	})
}

func (s *Server) RegisterOpenAPIHandler(g *echo.Group) {
	g.GET("", func(c echo.Context) error {
		doc, _ := s.oas.Get("")
		return c.JSON(http.StatusOK, doc)
	})
	g.GET("/:"+PathParamService, func(c echo.Context) error {
		p := c.Param(PathParamService)
		doc, ok := s.oas.Get(p)
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound,
				fmt.Sprintf("Service(%s) not found", p))
		}
		return c.JSON(http.StatusOK, doc)
	})
}

func (s *Server) Stop() error {
	s.l.Infoln("shutting down the server")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	return s.e.Shutdown(ctx)
}

func BindQueryParamsAndUnmarshalBody(c echo.Context, v interface{}) error {
	if ContainsMapTypeInStructType(reflect.TypeOf(v)) {
		if err := UnmarshalQueryParams(c, v); err != nil {
			return err
		}
	} else {
		if err := c.Bind(v); err != nil && err != echo.ErrUnsupportedMediaType {
			return err
		}
	}
	return UnmarshalRequestBody(c, v)
}

// QueryParamsToMap converts the bracket notation, e.g. params[dst]=0x1, to nested maps.
func QueryParamsToMap(c echo.Context) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	for k, v := range c.QueryParams() {
		tm := m
		if start := strings.IndexByte(k, '['); start > 0 && k[len(k)-1] == ']' {
			l := []string{k[:start]}
			l = append(l, strings.Split(k[start+1:len(k)-1], "][")...)
			var (
				elem interface{}
				ok   = false
				last = len(l) - 1
			)
			for i, p := range l {
				if i < last {
					if elem, ok = tm[p]; !ok {
						cm := make(map[string]interface{})
						tm[p] = cm
						tm = cm
					} else if tm, ok = elem.(map[string]interface{}); ok {
						continue
					} else {
						return nil, errors.Errorf("fail cast k:%s i:%d p:%s", k, i, p)
					}
				} else {
					k = p
				}
			}
		}
		switch len(v) {
		case 0:
			tm[k] = nil
		case 1:
			tm[k] = v[0]
		default:
			tm[k] = v
		}
	}
	return m, nil
}

func ContainsMapTypeInStructType(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).Type.Kind() == reflect.Map {
				return true
			} else if t.Field(i).Type.Kind() == reflect.Struct {
				if ContainsMapTypeInStructType(t.Field(i).Type) {
					return true
				}
			}
		}
	}
	return false
}

func UnmarshalQueryParams(c echo.Context, v interface{}) error {
	m, err := QueryParamsToMap(c)
	if err != nil {
		return err
	}
	if len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func UnmarshalRequestBody(c echo.Context, v interface{}) error {
	if c.Request().ContentLength == 0 {
		return nil
	}
	return UnmarshalBody(c.Request().Body, v)
}

func UnmarshalBody(b io.ReadCloser, v interface{}) error {
	defer b.Close()
	if err := json.NewDecoder(b).Decode(v); err != nil {
		return err
	}
	return nil
}
