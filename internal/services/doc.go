// Package services implements the business logic layer between the
// HTTP handlers and the analysis engine.
//
// Services follow these principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// AnalysisService owns run execution and history, SettingsService
// owns the settings file, DataService answers workbook and export
// queries, and HealthService reports component status.
package services
