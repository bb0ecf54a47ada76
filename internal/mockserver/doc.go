// Package mockserver serves mock HTTP endpoints described by YAML files.
//
// Each endpoint names a method, a path pattern and either a literal body or
// a guard. Path segments starting with ":" capture values that can be
// referenced from the body, as can "{{query.x}}" and "{{body.x}}"
// placeholders. A guard picks one of two branches from a request field;
// a branch either carries its own body or names a declaration whose
// fields are synthesized for each request.
//
// ## Internal endpoints
//
//   - GET /healthz reports readiness.
//   - POST /_internal/reload reloads the endpoint files and forgets every
//     cached declaration.
//   - GET /_internal/routes lists the loaded endpoints.
//
// ## Integration with testscript
//
// [TestScriptCmd] provides the "apimock-server" testscript command:
//   - apimock-server start -dir <mocks> [-schemas <dir>] [-config <file>]
//     starts a server and exports APIMOCK_URL.
//   - apimock-server snapshot prints per-route hit counts and known
//     schemas as TOML.
package mockserver
