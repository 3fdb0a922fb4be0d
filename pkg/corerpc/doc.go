// Package corerpc defines the gRPC contract between the codeassist CLI and
// the core process.
//
// The services are described by hand-maintained grpc.ServiceDesc values and
// carry only protobuf well-known types (Empty, StringValue, Struct), so no
// generated code is required on either side:
//
//   - AccountService: LoginClicked, LogoutClicked and the server-streaming
//     SubscribeToAuthStatusUpdate.
//   - StateService: GetLatestState (a JSON document) and
//     UpdateProviderPartial (a masked ProviderUpdate).
//
// AuthState and ProviderUpdate map the Struct payloads to Go types.
package corerpc
