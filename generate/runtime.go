package generate

import "adac/common"

// The runtime contract: every primitive the emitted code may call, declared
// once at the top of each module.  Exception identity is an opaque pointer
// token (the address of the exception's private identity byte).

const runtimeExterns = `declare i32 @memcmp(ptr, ptr, i64)
declare i32 @setjmp(ptr) returns_twice
declare void @longjmp(ptr, i32)
declare void @llvm.memcpy.p0.p0.i64(ptr, ptr, i64, i1)
declare double @llvm.pow.f64(double, double)
declare double @llvm.fabs.f64(double)

declare void @__ada_raise(ptr)
declare void @__ada_reraise()
declare void @__ada_push_handler(ptr)
declare void @__ada_pop_handler()
declare ptr @__ada_current_exception()
declare ptr @__ada_sec_stack_alloc(i64)
declare ptr @__ada_sec_stack_mark()
declare void @__ada_sec_stack_release(ptr)

declare void @__ada_image(ptr, i64)
declare i64 @__ada_value(ptr)
declare i64 @__ada_width(i64, i64)
`

// fatType is the representation of unconstrained array values: a data
// pointer plus an inline bounds pair
const fatType = "%fat = type { ptr, { i64, i64 } }"

// jmpBufBytes is the reserved setjmp buffer size; generous for the usual ABIs
const jmpBufBytes = 200

func (g *Generator) moduleHeader() string {
	layout, triple := g.Layout, g.Triple
	if layout == "" {
		layout = common.DefaultDataLayout
	}
	if triple == "" {
		triple = common.DefaultTargetTriple
	}
	return "target datalayout = \"" + layout + "\"\n" +
		"target triple = \"" + triple + "\"\n\n" +
		fatType + "\n\n" +
		runtimeExterns + "\n"
}
