// Package circuitbreaker 实现三态熔断器，保护存储访问
//
// # 状态机
//
//	CLOSED ──(ReadyToTrip为真)──> OPEN ──(Timeout到期)──> HALF_OPEN
//	  ^                                                    │
//	  └──────────(连续MaxRequests次成功)────────────────────┤
//	                                                       │
//	OPEN <──────────────(任意一次失败)──────────────────────┘
//
//   - CLOSED：正常放行，统计窗口（Interval）内累计成功/失败
//   - OPEN：直接返回ErrOpenState，不再访问下游
//   - HALF_OPEN：最多放行MaxRequests个探测请求
//
// # 成功与失败的判定
//
// 并不是所有error都说明下游有问题。"记录不存在"、"唯一键冲突"是正常的业务结果，
// 如果算作失败，大量404就会把熔断器打开。IsSuccessful用来区分：
//
//	cb := circuitbreaker.NewCircuitBreaker("author", circuitbreaker.Config{
//	    IsSuccessful: func(err error) bool {
//	        return err == nil || !apperrors.IsStoreUnavailable(err)
//	    },
//	})
//
// 调用方主动放弃的请求（ctx取消、超时）既不能说明下游正常，也不能说明下游故障，
// IsExcluded返回true的结果不计入统计，也不占用半开状态的探测名额。
//
// # generation
//
// 每次状态切换generation加一。请求开始时记下generation，结束时如果已经变化，
// 说明这个请求属于上一个周期，结果直接丢弃，不影响新周期的统计。
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config 熔断器配置，零值字段使用默认值
type Config struct {
	// MaxRequests 半开状态允许的探测请求数，也是恢复CLOSED需要的连续成功数，默认1
	MaxRequests uint32

	// Interval CLOSED状态的统计窗口，到期清零；<=0表示不清零
	Interval time.Duration

	// Timeout OPEN状态持续时间，到期进入HALF_OPEN，默认60秒
	Timeout time.Duration

	// ReadyToTrip CLOSED状态下每次失败后调用，返回true则熔断
	// 默认：连续失败超过5次
	ReadyToTrip func(counts Counts) bool

	// IsSuccessful 判断一次调用的结果是否算成功，默认err == nil
	IsSuccessful func(err error) bool

	// IsExcluded 返回true的结果不计入统计，默认全部计入
	IsExcluded func(err error) bool

	// OnStateChange 状态变化回调（持锁调用，回调内不能再访问熔断器）
	OnStateChange func(name string, from State, to State)
}

// Counts 当前统计窗口内的计数
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// FailureRate 失败率
func (c Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

func (c *Counts) reset() {
	*c = Counts{}
}

func (c *Counts) onSuccess() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// ErrOpenState 熔断器打开（或半开且探测名额已满）时返回
var ErrOpenState = errors.New("circuit breaker is open")

const (
	defaultTimeout             = 60 * time.Second
	defaultConsecutiveFailures = 5
)

// CircuitBreaker 熔断器，并发安全
type CircuitBreaker struct {
	name          string
	maxRequests   uint32
	interval      time.Duration
	timeout       time.Duration
	readyToTrip   func(counts Counts) bool
	isSuccessful  func(err error) bool
	isExcluded    func(err error) bool
	onStateChange func(name string, from State, to State)

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time // CLOSED：窗口结束时间；OPEN：恢复时间；HALF_OPEN：零值
	now        func() time.Time
}

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:          name,
		maxRequests:   config.MaxRequests,
		interval:      config.Interval,
		timeout:       config.Timeout,
		readyToTrip:   config.ReadyToTrip,
		isSuccessful:  config.IsSuccessful,
		isExcluded:    config.IsExcluded,
		onStateChange: config.OnStateChange,
		state:         StateClosed,
		now:           time.Now,
	}

	if cb.maxRequests == 0 {
		cb.maxRequests = 1
	}
	if cb.timeout <= 0 {
		cb.timeout = defaultTimeout
	}
	if cb.readyToTrip == nil {
		cb.readyToTrip = func(counts Counts) bool {
			return counts.ConsecutiveFailures > defaultConsecutiveFailures
		}
	}
	if cb.isSuccessful == nil {
		cb.isSuccessful = func(err error) bool { return err == nil }
	}
	if cb.isExcluded == nil {
		cb.isExcluded = func(error) bool { return false }
	}

	cb.resetWindow(cb.now())
	return cb
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute 在熔断器保护下执行req
// 熔断器拒绝时返回ErrOpenState，req不会被调用；否则原样返回req的错误
func (cb *CircuitBreaker) Execute(req func() error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	// req panic时按失败计数后继续向上panic
	defer func() {
		if r := recover(); r != nil {
			cb.afterRequest(generation, false)
			panic(r)
		}
	}()

	err = req()
	if err != nil && cb.isExcluded(err) {
		cb.releaseRequest(generation)
		return err
	}
	cb.afterRequest(generation, cb.isSuccessful(err))
	return err
}

// State 当前状态（会先处理到期的状态切换）
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, _ := cb.currentState(cb.now())
	return state
}

// Counts 当前窗口的计数快照
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.currentState(cb.now())

	switch {
	case state == StateOpen:
		return generation, ErrOpenState
	case state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests:
		return generation, ErrOpenState
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	state, generation := cb.currentState(now)
	if generation != before {
		return
	}

	if success {
		cb.counts.onSuccess()
		if state == StateHalfOpen && cb.counts.ConsecutiveSuccesses >= cb.maxRequests {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.onFailure()
	switch state {
	case StateClosed:
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// releaseRequest 撤销beforeRequest中的计数，结果不影响状态
func (cb *CircuitBreaker) releaseRequest(before uint64) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	_, generation := cb.currentState(cb.now())
	if generation == before && cb.counts.Requests > 0 {
		cb.counts.Requests--
	}
}

// currentState 处理到期切换后返回当前状态和generation，调用方持锁
func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.toNewGeneration(now)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.toNewGeneration(now)

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

func (cb *CircuitBreaker) toNewGeneration(now time.Time) {
	cb.generation++
	cb.counts.reset()
	cb.resetWindow(now)
}

func (cb *CircuitBreaker) resetWindow(now time.Time) {
	switch cb.state {
	case StateClosed:
		if cb.interval > 0 {
			cb.expiry = now.Add(cb.interval)
		} else {
			cb.expiry = time.Time{}
		}
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	default:
		cb.expiry = time.Time{}
	}
}
