// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the strongly-typed, in-memory representation of a
// loaded project graph. It is what downstream tooling (editors, analyzers,
// build orchestrators) consumes once the loader has finished its work.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - ProjectDescription: The evaluation result for one project file. It holds
//     the project's identity, language, source documents, references and
//     output path. A description is immutable once the loader hands it out.
//
//   - ProjectReference: An edge from one loaded project to another. References
//     point at identities, never at other descriptions, so a malformed input
//     with reference cycles can not produce pointer cycles in the model.
//
//   - SolutionSnapshot: The aggregate produced when loading from a solution
//     file. It keeps the solution's declared project order.
//
//   - Properties: The global build properties a project was evaluated with.
//     Property names are case-insensitive and the value is never mutated in
//     place; every change produces a new Properties value.
//
// Why a separate model package?
//
// The loader, the evaluation engine and the consumers all need to agree on the
// shape of a loaded project, but none of them should depend on each other's
// internals. Keeping the model free of any loading logic means a consumer can
// hold on to a snapshot for as long as it likes without pinning the loader,
// its engine session, or any file handles.
package model
