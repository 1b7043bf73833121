// Package tools defines the tool contract, the registry, and the built-in tools.
//
// Includes:
//   - Tool: name, description, JSON parameter schema, Invoke.
//   - Result: the single outcome type, rendered to text with Render.
//   - Registry: name -> Tool, advertised definitions, fault-absorbing Execute.
//   - GenerateSchema[T](): derive JSON Schema from Go input structs.
//   - Built-ins: rag_search (local full-text index), web_search (Serper).
//   - Invariant: expected failures come back as Result{Success:false}; Execute never
//     lets an error or panic escape to the caller.
package tools
