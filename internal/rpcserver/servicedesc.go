package rpcserver

import (
	"context"

	"google.golang.org/grpc"
)

// method adapts one Handler operation into a grpc.MethodDesc. Requests and
// responses are decoded/encoded as JSON maps via jsonCodec rather than
// generated proto.Message types, since the ServiceDesc here is
// hand-declared (spec DOMAIN STACK: no protoc step).
func method(name string, fn func(h *Handler, ctx context.Context, p params) (interface{}, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := params{}
			if err := dec(&in); err != nil {
				return nil, err
			}
			h := srv.(*Handler)
			if interceptor == nil {
				return fn(h, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			wrapper := func(ctx context.Context, req interface{}) (interface{}, error) {
				return fn(h, ctx, req.(params))
			}
			return interceptor(ctx, in, info, wrapper)
		},
	}
}

// serviceDesc declares every wire operation the daemon exposes, grouped
// by subsystem.
func serviceDesc() *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*Handler)(nil),
		Methods: []grpc.MethodDesc{
			method("Init", (*Handler).Init),
			method("GetReconciliationPlan", (*Handler).GetReconciliationPlan),
			method("ExecuteReconciliation", (*Handler).ExecuteReconciliation),
			method("IsInitialized", (*Handler).IsInitialized),
			method("GetManifest", (*Handler).GetManifest),

			method("CreateIssue", (*Handler).CreateIssue),
			method("GetIssue", (*Handler).GetIssue),
			method("GetIssueByDisplayNumber", (*Handler).GetIssueByDisplayNumber),
			method("ListIssues", (*Handler).ListIssues),
			method("UpdateIssue", (*Handler).UpdateIssue),
			method("DeleteIssue", (*Handler).DeleteIssue),
			method("GetNextIssueNumber", (*Handler).GetNextIssueNumber),

			method("CreateDoc", (*Handler).CreateDoc),
			method("GetDoc", (*Handler).GetDoc),
			method("ListDocs", (*Handler).ListDocs),
			method("UpdateDoc", (*Handler).UpdateDoc),
			method("DeleteDoc", (*Handler).DeleteDoc),

			method("AddAsset", (*Handler).AddAsset),
			method("GetAsset", (*Handler).GetAsset),
			method("ListAssets", (*Handler).ListAssets),
			method("DeleteAsset", (*Handler).DeleteAsset),
			method("ListSharedAssets", (*Handler).ListSharedAssets),

			method("GetConfig", (*Handler).GetConfig),

			method("ListProjects", (*Handler).ListProjects),
			method("RegisterProject", (*Handler).RegisterProject),
			method("UntrackProject", (*Handler).UntrackProject),
			method("GetProjectInfo", (*Handler).GetProjectInfo),

			method("GetDaemonInfo", (*Handler).GetDaemonInfo),
			method("GetProjectVersion", (*Handler).GetProjectVersion),
			method("UpdateVersion", (*Handler).UpdateVersion),

			method("Shutdown", (*Handler).Shutdown),
			method("Restart", (*Handler).Restart),
		},
		Metadata: "centy.proto",
	}
}
