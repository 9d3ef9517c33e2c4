// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/robustdom/internal/config"
	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Wait() config.WaitConfig {
	args := m.Called()
	return args.Get(0).(config.WaitConfig)
}

func (m *MockConfig) Launcher() config.LauncherConfig {
	args := m.Called()
	return args.Get(0).(config.LauncherConfig)
}

// --- Setters ---

func (m *MockConfig) SetBrowserHeadless(b bool) {
	m.Called(b)
}

func (m *MockConfig) SetWaitTimeout(d time.Duration) {
	m.Called(d)
}

func (m *MockConfig) SetLauncherOutputDir(dir string) {
	m.Called(dir)
}

// -- Driver Mocks --

// MockElement mocks driver.Element.
type MockElement struct {
	mock.Mock
}

var _ driver.Element = (*MockElement)(nil)

func (m *MockElement) FindElement(ctx context.Context, by locator.By) (driver.Element, error) {
	args := m.Called(ctx, by)
	el, _ := args.Get(0).(driver.Element)
	return el, args.Error(1)
}

func (m *MockElement) FindElements(ctx context.Context, by locator.By) ([]driver.Element, error) {
	args := m.Called(ctx, by)
	els, _ := args.Get(0).([]driver.Element)
	return els, args.Error(1)
}

func (m *MockElement) Text(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockElement) TagName(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockElement) Attribute(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockElement) CSSValue(ctx context.Context, property string) (string, error) {
	args := m.Called(ctx, property)
	return args.String(0), args.Error(1)
}

func (m *MockElement) Click(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockElement) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockElement) Submit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockElement) SendKeys(ctx context.Context, keys string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockElement) Rect(ctx context.Context) (driver.Rect, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(driver.Rect)
	return r, args.Error(1)
}

func (m *MockElement) IsDisplayed(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockElement) IsEnabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockElement) IsSelected(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockElement) Screenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

// MockDriver mocks driver.Driver.
type MockDriver struct {
	mock.Mock
}

var _ driver.Driver = (*MockDriver)(nil)

func (m *MockDriver) FindElement(ctx context.Context, by locator.By) (driver.Element, error) {
	args := m.Called(ctx, by)
	el, _ := args.Get(0).(driver.Element)
	return el, args.Error(1)
}

func (m *MockDriver) FindElements(ctx context.Context, by locator.By) ([]driver.Element, error) {
	args := m.Called(ctx, by)
	els, _ := args.Get(0).([]driver.Element)
	return els, args.Error(1)
}

func (m *MockDriver) Capabilities() driver.Capabilities {
	args := m.Called()
	return args.Get(0).(driver.Capabilities)
}

func (m *MockDriver) ImplicitWait() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockDriver) SetImplicitWait(d time.Duration) {
	m.Called(d)
}

func (m *MockDriver) LocateByScript(ctx context.Context, scope driver.Element, script driver.Script, args ...interface{}) (driver.Element, error) {
	called := m.Called(ctx, scope, script.Name, args)
	el, _ := called.Get(0).(driver.Element)
	return el, called.Error(1)
}
