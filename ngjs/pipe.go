package ngjs

import "github.com/robfig/ngc/output"

// CompilePipe compiles the ɵpipe definition of a pipe.
func CompilePipe(meta *PipeMeta, mode Mode) Compiled {
	var m DefinitionMap
	if mode == Partial {
		declarationHeader(&m)
		m.Set("ngImport", ngImport)
		m.Set("type", meta.Type)
		m.Set("name", output.Lit(meta.PipeName))
		if !meta.Pure {
			m.Set("pure", output.Lit(false))
		}
		return Compiled{
			Expression: output.CallFn(core(declarePipe), m.ToLiteralMap()),
			Type:       pipeType(meta),
		}
	}

	m.Set("name", output.Lit(meta.PipeName))
	m.Set("type", meta.Type)
	m.Set("pure", output.Lit(meta.Pure))
	return Compiled{
		Expression: definition(definePipe, &m, Full),
		Type:       pipeType(meta),
	}
}

func pipeType(meta *PipeMeta) output.Type {
	return output.CoreType(pipeDef,
		typeOf(meta.Type, meta.TypeArgumentCount),
		&output.LiteralType{Value: meta.PipeName})
}
