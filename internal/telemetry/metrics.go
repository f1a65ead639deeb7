package telemetry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var defaultRegistry = newRegistry()

var durationBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}

type registry struct {
	mu                  sync.Mutex
	toolCalls           map[string]map[string]int64
	toolDurationBuckets map[string][]int64
	toolDurationSums    map[string]float64
	promptGets          map[string]int64
	upstreamAPIErrors   map[string]map[int]int64
	auditWriteFailures  int64
}

func newRegistry() *registry {
	return &registry{
		toolCalls:           make(map[string]map[string]int64),
		toolDurationBuckets: make(map[string][]int64),
		toolDurationSums:    make(map[string]float64),
		promptGets:          make(map[string]int64),
		upstreamAPIErrors:   make(map[string]map[int]int64),
	}
}

// Reset clears every counter. Intended for tests.
func Reset() {
	r := newRegistry()
	defaultRegistry.mu.Lock()
	defaultRegistry.toolCalls = r.toolCalls
	defaultRegistry.toolDurationBuckets = r.toolDurationBuckets
	defaultRegistry.toolDurationSums = r.toolDurationSums
	defaultRegistry.promptGets = r.promptGets
	defaultRegistry.upstreamAPIErrors = r.upstreamAPIErrors
	defaultRegistry.auditWriteFailures = 0
	defaultRegistry.mu.Unlock()
}

func IncToolCall(toolName, status string) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	if _, ok := defaultRegistry.toolCalls[toolName]; !ok {
		defaultRegistry.toolCalls[toolName] = make(map[string]int64)
	}
	defaultRegistry.toolCalls[toolName][status]++
}

func ObserveToolDuration(toolName string, d time.Duration) {
	sec := d.Seconds()

	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	if _, ok := defaultRegistry.toolDurationBuckets[toolName]; !ok {
		defaultRegistry.toolDurationBuckets[toolName] = make([]int64, len(durationBuckets)+1)
	}
	idx := len(durationBuckets)
	for i, b := range durationBuckets {
		if sec <= b {
			idx = i
			break
		}
	}
	defaultRegistry.toolDurationBuckets[toolName][idx]++
	defaultRegistry.toolDurationSums[toolName] += sec
}

func IncPromptGet(promptName string) {
	defaultRegistry.mu.Lock()
	defaultRegistry.promptGets[promptName]++
	defaultRegistry.mu.Unlock()
}

// IncUpstreamAPIError counts a non-2xx answer from the enrichment API.
func IncUpstreamAPIError(operation string, statusCode int) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	if _, ok := defaultRegistry.upstreamAPIErrors[operation]; !ok {
		defaultRegistry.upstreamAPIErrors[operation] = make(map[int]int64)
	}
	defaultRegistry.upstreamAPIErrors[operation][statusCode]++
}

func IncAuditWriteFailure() {
	defaultRegistry.mu.Lock()
	defaultRegistry.auditWriteFailures++
	defaultRegistry.mu.Unlock()
}

func RenderPrometheus() string {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()

	var sb strings.Builder

	sb.WriteString("# TYPE proxycurl_mcp_tool_calls_total counter\n")
	for _, tool := range sortedKeys(defaultRegistry.toolCalls) {
		for _, status := range sortedKeys(defaultRegistry.toolCalls[tool]) {
			sb.WriteString(fmt.Sprintf("proxycurl_mcp_tool_calls_total{tool=\"%s\",status=\"%s\"} %d\n", tool, status, defaultRegistry.toolCalls[tool][status]))
		}
	}

	// Buckets are stored per interval and rendered cumulatively.
	sb.WriteString("# TYPE proxycurl_mcp_tool_duration_seconds histogram\n")
	for _, tool := range sortedKeys(defaultRegistry.toolDurationBuckets) {
		var cumulative int64
		for i, v := range defaultRegistry.toolDurationBuckets[tool] {
			cumulative += v
			le := "+Inf"
			if i < len(durationBuckets) {
				le = strconv.FormatFloat(durationBuckets[i], 'g', -1, 64)
			}
			sb.WriteString(fmt.Sprintf("proxycurl_mcp_tool_duration_seconds_bucket{tool=\"%s\",le=\"%s\"} %d\n", tool, le, cumulative))
		}
		sb.WriteString(fmt.Sprintf("proxycurl_mcp_tool_duration_seconds_sum{tool=\"%s\"} %s\n", tool, strconv.FormatFloat(defaultRegistry.toolDurationSums[tool], 'g', -1, 64)))
		sb.WriteString(fmt.Sprintf("proxycurl_mcp_tool_duration_seconds_count{tool=\"%s\"} %d\n", tool, cumulative))
	}

	sb.WriteString("# TYPE proxycurl_mcp_prompt_gets_total counter\n")
	for _, name := range sortedKeys(defaultRegistry.promptGets) {
		sb.WriteString(fmt.Sprintf("proxycurl_mcp_prompt_gets_total{prompt=\"%s\"} %d\n", name, defaultRegistry.promptGets[name]))
	}

	sb.WriteString("# TYPE proxycurl_mcp_upstream_api_errors_total counter\n")
	for _, op := range sortedKeys(defaultRegistry.upstreamAPIErrors) {
		statusCodes := make([]int, 0, len(defaultRegistry.upstreamAPIErrors[op]))
		for sc := range defaultRegistry.upstreamAPIErrors[op] {
			statusCodes = append(statusCodes, sc)
		}
		sort.Ints(statusCodes)
		for _, sc := range statusCodes {
			sb.WriteString(fmt.Sprintf("proxycurl_mcp_upstream_api_errors_total{operation=\"%s\",status_code=\"%d\"} %d\n", op, sc, defaultRegistry.upstreamAPIErrors[op][sc]))
		}
	}

	sb.WriteString("# TYPE proxycurl_mcp_audit_write_failures_total counter\n")
	sb.WriteString(fmt.Sprintf("proxycurl_mcp_audit_write_failures_total %d\n", defaultRegistry.auditWriteFailures))

	return sb.String()
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
