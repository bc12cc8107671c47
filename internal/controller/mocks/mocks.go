// Package mocks holds hand-maintained gomock doubles for the controller
// package's collaborator interfaces, in the shape mockgen would generate
// from internal/controller/service.go.
package mocks

import (
	"context"
	"reflect"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/queue"
	"go.uber.org/mock/gomock"
)

// MockQueueClient is a mock of the controller.QueueClient interface.
type MockQueueClient struct {
	ctrl     *gomock.Controller
	recorder *MockQueueClientMockRecorder
}

type MockQueueClientMockRecorder struct {
	mock *MockQueueClient
}

func NewMockQueueClient(ctrl *gomock.Controller) *MockQueueClient {
	mock := &MockQueueClient{ctrl: ctrl}
	mock.recorder = &MockQueueClientMockRecorder{mock}
	return mock
}

func (m *MockQueueClient) EXPECT() *MockQueueClientMockRecorder {
	return m.recorder
}

func (m *MockQueueClient) Enqueue(project string, item queue.Item) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Enqueue", project, item)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockQueueClientMockRecorder) Enqueue(project, item interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Enqueue",
		reflect.TypeOf((*MockQueueClient)(nil).Enqueue), project, item)
}

func (m *MockQueueClient) Depth() int {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Depth")
	ret0, _ := ret[0].(int)
	return ret0
}

func (mr *MockQueueClientMockRecorder) Depth() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Depth",
		reflect.TypeOf((*MockQueueClient)(nil).Depth))
}

func (m *MockQueueClient) MaxWorkers() int {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MaxWorkers")
	ret0, _ := ret[0].(int)
	return ret0
}

func (mr *MockQueueClientMockRecorder) MaxWorkers() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MaxWorkers",
		reflect.TypeOf((*MockQueueClient)(nil).MaxWorkers))
}

func (m *MockQueueClient) ActiveWorkers() int {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ActiveWorkers")
	ret0, _ := ret[0].(int)
	return ret0
}

func (mr *MockQueueClientMockRecorder) ActiveWorkers() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ActiveWorkers",
		reflect.TypeOf((*MockQueueClient)(nil).ActiveWorkers))
}

// MockRefResolver is a mock of the controller.RefResolver interface.
type MockRefResolver struct {
	ctrl     *gomock.Controller
	recorder *MockRefResolverMockRecorder
}

type MockRefResolverMockRecorder struct {
	mock *MockRefResolver
}

func NewMockRefResolver(ctrl *gomock.Controller) *MockRefResolver {
	mock := &MockRefResolver{ctrl: ctrl}
	mock.recorder = &MockRefResolverMockRecorder{mock}
	return mock
}

func (m *MockRefResolver) EXPECT() *MockRefResolverMockRecorder {
	return m.recorder
}

func (m *MockRefResolver) ResolveRef(ctx context.Context, traceID, repoURL string, refType entity.RefType, ref string) (bool, string, string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ResolveRef", ctx, traceID, repoURL, refType, ref)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(string)
	ret2, _ := ret[2].(string)
	ret3, _ := ret[3].(error)
	return ret0, ret1, ret2, ret3
}

func (mr *MockRefResolverMockRecorder) ResolveRef(ctx, traceID, repoURL, refType, ref interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ResolveRef",
		reflect.TypeOf((*MockRefResolver)(nil).ResolveRef), ctx, traceID, repoURL, refType, ref)
}
