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
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/service"
)

const (
	openapiVersion  = "3.0.3"
	docVersion      = "0.1.0"
	schemaRef       = "#/components/schemas/"
	parameterRef    = "#/components/parameters/"
	tagReadonly     = "Readonly"
	tagWritable     = "Writable"
	tagGeneral      = "General"
	tagTracker      = "Tracker"
	schemaTxID      = "TxID"
	schemaRequest   = "Request"
	schemaOptions   = "Options"
	schemaError     = "ErrorResponse"
	schemaPopulated = "PopulatedTransaction"
)

var (
	methodNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	integerSchema     = openapi3.NewOneOfSchema(
		openapi3.NewStringSchema().WithPattern("^(0x|\\-0x)(0|[1-9a-f][0-9a-f]*)$"),
		openapi3.NewStringSchema().WithPattern("^(|\\-)(0|[1-9][0-9]*)$"),
		openapi3.NewIntegerSchema(),
	)
	sharedSchemas = map[string]*openapi3.Schema{
		schemaTxID:                 openapi3.NewStringSchema().WithPattern("^0x([0-9a-f][0-9a-f])*$"),
		schemaRequest:              schemaOf(&Request{}),
		schemaOptions:              openapi3.NewObjectSchema(),
		schemaError:                schemaOf(&ErrorResponse{}),
		schemaPopulated:            schemaOf(&contract.PopulatedTransaction{}),
		contract.TInteger.String(): integerSchema,
		contract.TBoolean.String(): openapi3.NewBoolSchema(),
		contract.TString.String():  openapi3.NewStringSchema(),
		contract.TBytes.String():   openapi3.NewBytesSchema(),
		contract.TAddress.String(): openapi3.NewStringSchema().WithFormat(contract.TAddress.String()),
	}
)

// schemaOf panics on failure, it is only called with the request and response types of this package.
func schemaOf(v interface{}) *openapi3.Schema {
	ref, err := openapi3gen.NewSchemaRefForValue(v, nil)
	if err != nil {
		log.Panicf("fail to generate schema type:%T err:%+v", v, err)
	}
	return ref.Value
}

func sharedRef(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef(schemaRef+name, sharedSchemas[name])
}

func enumSchema(values []string) *openapi3.Schema {
	l := make([]interface{}, len(values))
	for i, v := range values {
		l[i] = v
	}
	return openapi3.NewStringSchema().WithEnum(l...)
}

func urlOf(segments ...string) string {
	return strings.Join(segments, "/")
}

func paramOf(name string) string {
	return "{" + name + "}"
}

type operation struct {
	*openapi3.Operation
}

func newOperation(summary string, tags ...string) operation {
	return operation{&openapi3.Operation{
		Tags:      tags,
		Summary:   summary,
		Responses: make(openapi3.Responses),
	}}
}

func (o operation) query(ps ...*openapi3.Parameter) operation {
	for _, p := range ps {
		o.Parameters = append(o.Parameters, &openapi3.ParameterRef{Value: p})
	}
	return o
}

func (o operation) body(s *openapi3.Schema) operation {
	o.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithContent(openapi3.NewContentWithJSONSchema(s)),
	}
	return o
}

// returns documents the success response, sr is nil for no content.
func (o operation) returns(sr *openapi3.SchemaRef) operation {
	resp := openapi3.NewResponse().WithDescription("Successful operation")
	if sr != nil {
		resp = resp.WithJSONSchemaRef(sr)
	}
	o.Responses[strconv.Itoa(http.StatusOK)] = &openapi3.ResponseRef{Value: resp}
	o.Responses["default"] = &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Error").WithJSONSchemaRef(sharedRef(schemaError)),
	}
	return o
}

func (o operation) returnsSchema(s *openapi3.Schema) operation {
	return o.returns(s.NewRef())
}

// queryParamsOf flattens the properties of s into query parameters in name order.
func queryParamsOf(s *openapi3.Schema) []*openapi3.Parameter {
	names := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		names = append(names, k)
	}
	sort.Strings(names)
	required := make(map[string]bool)
	for _, k := range s.Required {
		required[k] = true
	}
	ps := make([]*openapi3.Parameter, 0, len(names))
	for _, k := range names {
		ps = append(ps, openapi3.NewQueryParameter(k).
			WithSchema(s.Properties[k].Value).
			WithRequired(required[k]))
	}
	return ps
}

// typeRef returns nil for void. Unknown types are added to schemas as an object.
func typeRef(s contract.TypeSpec, schemas openapi3.Schemas) *openapi3.SchemaRef {
	if s.TypeID == contract.TVoid {
		return nil
	}
	name := s.TypeID.String()
	sr, ok := schemas[name]
	if !ok {
		v := openapi3.NewObjectSchema()
		v.Description = s.Name
		sr = v.NewRef()
		schemas[name] = sr
	}
	ref := openapi3.NewSchemaRef(schemaRef+name, sr.Value)
	for i := 0; i < s.Dimension; i++ {
		arr := openapi3.NewArraySchema()
		arr.Items = ref
		ref = arr.NewRef()
	}
	return ref
}

func paramsSchema(m map[string]*contract.NameAndTypeSpec, schemas openapi3.Schemas) *openapi3.Schema {
	v := openapi3.NewObjectSchema()
	for k, s := range m {
		v.WithPropertyRef(k, typeRef(s.Type, schemas))
		if !s.Optional {
			v.Required = append(v.Required, k)
		}
	}
	sort.Strings(v.Required)
	return v
}

func newDoc(title string) openapi3.T {
	schemas := make(openapi3.Schemas)
	for k, v := range sharedSchemas {
		schemas[k] = v.NewRef()
	}
	return openapi3.T{
		OpenAPI: openapiVersion,
		Info: &openapi3.Info{
			Title:   fmt.Sprintf("WETH SDK %s- OpenAPI %s", title, openapiVersion),
			Version: docVersion,
			License: &openapi3.License{
				Name: "Apache 2.0",
				URL:  "http://www.apache.org/licenses/LICENSE-2.0.html",
			},
		},
		Tags: openapi3.Tags{
			{Name: tagReadonly, Description: "Readonly service method"},
			{Name: tagWritable, Description: "Writable service method"},
		},
		Paths: make(openapi3.Paths),
		Components: &openapi3.Components{
			Schemas:    schemas,
			Parameters: make(openapi3.ParametersMap),
		},
	}
}

func hasTag(ts openapi3.Tags, name string) bool {
	return ts.Get(name) != nil
}

// methodPaths returns the path items of a method by the suffix of the method url.
func methodPaths(serviceName string, m *contract.MethodSpec, schemas openapi3.Schemas) map[string]*openapi3.PathItem {
	req := openapi3.NewObjectSchema().
		WithPropertyRef("options", sharedRef(schemaOptions)).
		WithProperty("params", paramsSchema(m.InputMap, schemas))
	output := typeRef(m.Output, schemas)
	readonly := []string{tagReadonly, serviceName}
	writable := []string{tagWritable, serviceName}

	ret := map[string]*openapi3.PathItem{
		UrlStatic: {
			Post: newOperation("Simulate "+m.Name, readonly...).body(req).returns(output).Operation,
		},
	}
	if m.ReadOnly {
		ret[""] = &openapi3.PathItem{
			Get: newOperation("Call "+m.Name, readonly...).
				query(openapi3.NewQueryParameter("request").WithSchema(req)).
				returns(output).Operation,
		}
		return ret
	}
	ret[""] = &openapi3.PathItem{
		Post: newOperation("Invoke "+m.Name, writable...).body(req).returns(sharedRef(schemaTxID)).Operation,
	}
	ret[UrlEstimate] = &openapi3.PathItem{
		Post: newOperation("Estimate gas of "+m.Name, writable...).body(req).returns(integerSchema.NewRef()).Operation,
	}
	ret[UrlPopulate] = &openapi3.PathItem{
		Post: newOperation("Populate transaction of "+m.Name, writable...).body(req).returns(sharedRef(schemaPopulated)).Operation,
	}
	return ret
}

// serviceDoc documents every method of the service with the networks
// of which spec has the method.
func serviceDoc(s service.Service) openapi3.T {
	doc := newDoc(s.Name() + " ")
	doc.Tags = append(doc.Tags, &openapi3.Tag{Name: s.Name(), Description: s.Name() + " Service"})

	methods := make(map[string]*contract.MethodSpec)
	networks := make(map[string][]string)
	for _, network := range s.Networks() {
		spec, err := s.Spec(network)
		if err != nil {
			continue
		}
		for i := range spec.Methods {
			m := &spec.Methods[i]
			if !methodNamePattern.MatchString(m.Name) {
				continue
			}
			if _, ok := methods[m.Name]; !ok {
				methods[m.Name] = m
			}
			networks[m.Name] = append(networks[m.Name], network)
		}
	}
	for name, m := range methods {
		np := openapi3.NewPathParameter(PathParamNetwork).WithRequired(true).WithSchema(enumSchema(networks[name]))
		url := urlOf(GroupUrlApi, paramOf(PathParamNetwork), s.Name(), name)
		for suffix, pi := range methodPaths(s.Name(), m, doc.Components.Schemas) {
			pi.Parameters = openapi3.Parameters{{Value: np}}
			doc.Paths[url+suffix] = pi
		}
	}
	return doc
}

// OpenAPIDocs keeps the document of every service and the merged one.
type OpenAPIDocs struct {
	merged   openapi3.T
	services map[string]openapi3.T
	networks map[string]string
	network  *openapi3.Parameter
	mtx      sync.RWMutex
	l        log.Logger
}

func (d *OpenAPIDocs) putParameter(p *openapi3.Parameter) *openapi3.ParameterRef {
	d.merged.Components.Parameters[p.Name] = &openapi3.ParameterRef{Value: p}
	return &openapi3.ParameterRef{Ref: parameterRef + p.Name, Value: p}
}

func (d *OpenAPIDocs) pathParameter(name string, sr *openapi3.SchemaRef) *openapi3.ParameterRef {
	p := openapi3.NewPathParameter(name).WithRequired(true)
	p.Schema = sr
	return d.putParameter(p)
}

func NewOpenAPIDocs(l log.Logger) *OpenAPIDocs {
	d := &OpenAPIDocs{
		merged:   newDoc(""),
		services: make(map[string]openapi3.T),
		networks: make(map[string]string),
		l:        l,
	}
	d.merged.Tags = append(openapi3.Tags{
		{Name: tagGeneral, Description: "General purpose"},
		{Name: tagTracker, Description: "Stored events"},
	}, d.merged.Tags...)

	d.network = openapi3.NewPathParameter(PathParamNetwork).WithRequired(true).WithSchema(enumSchema(nil))
	np := d.putParameter(d.network)
	addressSchema := openapi3.NewOneOfSchema(openapi3.NewStringSchema())
	addressSchema.OneOf = append(addressSchema.OneOf, sharedRef(contract.TAddress.String()))
	sp := d.pathParameter(PathParamServiceOrAddress, addressSchema.NewRef())
	tp := d.pathParameter(PathParamTxID, sharedRef(schemaTxID))
	mp := d.pathParameter(PathParamMethod, openapi3.NewStringSchema().NewRef())
	trp := d.pathParameter(PathParamService, openapi3.NewStringSchema().NewRef())

	paths := d.merged.Paths
	paths[GroupUrlApi] = &openapi3.PathItem{
		Get: newOperation("Retrieve networks", tagGeneral).returnsSchema(schemaOf(NetworkInfos{})).Operation,
	}
	paths[urlOf(GroupUrlApi, paramOf(PathParamNetwork))] = &openapi3.PathItem{
		Parameters: openapi3.Parameters{np},
		Get:        newOperation("Retrieve services", tagGeneral).returnsSchema(schemaOf(ServiceInfos{})).Operation,
		Post: newOperation("Register contract service", tagGeneral).
			body(schemaOf(RegisterContractServiceRequest{})).returns(nil).Operation,
	}
	paths[urlOf(GroupUrlApi, paramOf(PathParamNetwork))+UrlGetResult+"/"+paramOf(PathParamTxID)] = &openapi3.PathItem{
		Parameters: openapi3.Parameters{np, tp},
		Get: newOperation("Get result of transaction with given TxID", tagGeneral).
			returnsSchema(openapi3.NewObjectSchema()).Operation,
	}
	paths[urlOf(GroupUrlApi, paramOf(PathParamNetwork), paramOf(PathParamServiceOrAddress))] = &openapi3.PathItem{
		Parameters: openapi3.Parameters{np, sp},
		Get:        newOperation("Retrieve spec", tagGeneral).returnsSchema(openapi3.NewObjectSchema()).Operation,
	}
	paths[urlOf(GroupUrlApi, paramOf(PathParamNetwork), paramOf(PathParamServiceOrAddress), paramOf(PathParamMethod))] = &openapi3.PathItem{
		Parameters: openapi3.Parameters{np, sp, mp},
		Get: newOperation("Call readonly method", tagGeneral, tagReadonly).
			query(openapi3.NewQueryParameter("request").WithSchema(sharedSchemas[schemaRequest])).
			returnsSchema(openapi3.NewObjectSchema()).Operation,
		Post: newOperation("Invoke writable method", tagGeneral, tagWritable).
			body(sharedSchemas[schemaRequest]).returns(sharedRef(schemaTxID)).Operation,
	}

	paths[GroupUrlTracker] = &openapi3.PathItem{
		Get: newOperation("Retrieve trackers", tagTracker).returnsSchema(schemaOf(TrackerInfos{})).Operation,
	}
	paths[urlOf(GroupUrlTracker, paramOf(PathParamService))+UrlTrackerEvents] = &openapi3.PathItem{
		Parameters: openapi3.Parameters{trp},
		Get: newOperation("Find stored events", tagTracker).
			query(queryParamsOf(schemaOf(TrackerFindRequest{}))...).
			returnsSchema(openapi3.NewObjectSchema()).Operation,
	}
	paths[urlOf(GroupUrlTracker, paramOf(PathParamService))+UrlTrackerSummary] = &openapi3.PathItem{
		Parameters: openapi3.Parameters{trp},
		Get: newOperation("Count stored events", tagTracker).
			returnsSchema(openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())).Operation,
	}
	return d
}

// Get returns the merged document for the empty name.
func (d *OpenAPIDocs) Get(name string) (openapi3.T, bool) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()
	if len(name) == 0 {
		return d.merged, true
	}
	doc, ok := d.services[name]
	return doc, ok
}

// PutNetwork adds network to the network parameter and lists it in the tag of networkType.
func (d *OpenAPIDocs) PutNetwork(network, networkType string) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	if old, ok := d.networks[network]; ok && old == networkType {
		return
	}
	d.networks[network] = networkType

	byType := make(map[string][]string)
	names := make([]string, 0, len(d.networks))
	for n, nt := range d.networks {
		byType[nt] = append(byType[nt], n)
		names = append(names, n)
	}
	sort.Strings(names)
	d.network.Schema = enumSchema(names).NewRef()

	tags := make(openapi3.Tags, 0, len(d.merged.Tags))
	for _, t := range d.merged.Tags {
		if _, isType := byType[t.Name]; isType || !d.isNetworkTypeTag(t) {
			tags = append(tags, t)
		}
	}
	types := make([]string, 0, len(byType))
	for nt := range byType {
		types = append(types, nt)
	}
	sort.Strings(types)
	for _, nt := range types {
		ns := byType[nt]
		sort.Strings(ns)
		if t := tags.Get(nt); t != nil {
			t.Description = strings.Join(ns, ",")
		} else {
			tags = append(tags, &openapi3.Tag{Name: nt, Description: strings.Join(ns, ",")})
		}
	}
	d.merged.Tags = tags
	d.l.Debugf("PutNetwork network:%s networkType:%s", network, networkType)
}

func (d *OpenAPIDocs) isNetworkTypeTag(t *openapi3.Tag) bool {
	switch t.Name {
	case tagGeneral, tagTracker, tagReadonly, tagWritable:
		return false
	}
	_, isService := d.services[t.Name]
	return !isService
}

// PutService replaces the paths of the service in the merged document.
func (d *OpenAPIDocs) PutService(svc service.Service) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	name := svc.Name()
	if old, ok := d.services[name]; ok {
		d.l.Debugf("replace OpenAPI document service:%s", name)
		for k := range old.Paths {
			delete(d.merged.Paths, k)
		}
	}
	doc := serviceDoc(svc)
	d.services[name] = doc
	for _, t := range doc.Tags {
		if !hasTag(d.merged.Tags, t.Name) {
			d.merged.Tags = append(d.merged.Tags, t)
		}
	}
	for k, v := range doc.Paths {
		if _, ok := d.merged.Paths[k]; ok {
			d.l.Warnf("overwrite OpenAPI path:%s service:%s", k, name)
		}
		d.merged.Paths[k] = v
	}
	for k, v := range doc.Components.Schemas {
		d.merged.Components.Schemas[k] = v
	}
}
