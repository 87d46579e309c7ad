// Package tracing 提供基于OpenTelemetry的链路追踪
//
// # 追踪的范围
//
// 一次HTTP请求在本服务内的链路：
//
//	GET /authors/1（gin访问日志记录trace_id）
//	└─ author.find_by_id（guard.WithTelemetry创建）
//	   ├─ redis GET author:detail:1（缓存命中时到此结束）
//	   └─ SELECT * FROM authors WHERE id = 1
//
// Span名称使用`{entity}.{op}`格式，属性里带上id，错误时记录错误并标记状态。
//
// # 使用示例
//
//	shutdown, err := tracing.InitTracer(ctx, tracing.Options{
//	    ServiceName: "bookstore-api",
//	    Endpoint:    "localhost:4317",
//	    SampleRatio: 0.1,
//	})
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.StartSpan(ctx, "repository", "author.find_by_id")
//	defer span.End()
//
// 未调用InitTracer时otel使用no-op Provider，StartSpan依然可用，只是不产生数据。
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Options 追踪配置
type Options struct {
	ServiceName string
	Endpoint    string  // OTLP gRPC端点（host:port，不带协议）
	SampleRatio float64 // 0~1，1表示全采样
}

// ShutdownFunc 刷新并关闭TracerProvider
type ShutdownFunc func(context.Context) error

// InitTracer 初始化全局TracerProvider（OTLP gRPC导出）
func InitTracer(ctx context.Context, opts Options) (ShutdownFunc, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(
		dialCtx,
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithInsecure(), // 生产环境应启用TLS
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	return install(dialCtx, opts, sdktrace.WithBatcher(exporter))
}

// install 组装TracerProvider并设置为全局
// 测试中可以传入sdktrace.WithSpanProcessor(recorder)替代真实导出器
func install(ctx context.Context, opts Options, processor sdktrace.TracerProviderOption) (ShutdownFunc, error) {
	res, err := resource.New(
		ctx,
		resource.WithAttributes(semconv.ServiceName(opts.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		// ParentBased：上游已决定采样时跟随上游，否则按比例
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
		processor,
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, // W3C Trace Context
			propagation.Baggage{},
		),
	)

	shutdown := func(ctx context.Context) error {
		// 防止Collector不可达时阻塞退出
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// StartSpan 从全局Provider创建Span
//   - ctx包含父Span时自动成为子Span
//   - 调用方负责span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, opts...)
}

// RecordError 记录错误并把Span状态标记为Error
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// ExtractTraceID 从上下文提取TraceID（用于日志关联）
func ExtractTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// ExtractSpanID 从上下文提取SpanID
func ExtractSpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}
