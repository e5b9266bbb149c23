package grammar

var tables = map[Context]map[string]Entry{
	Global:      {},
	Rule:        {},
	Subworkflow: {},
	Module:      {},
}

func add(ctx Context, e Entry) {
	tables[ctx][e.Word] = e
}

func sections(ctx Context, arity Arity, words ...string) {
	for _, w := range words {
		add(ctx, Entry{Word: w, Kind: KindSection, Arity: arity})
	}
}

func init() {
	add(Global, Entry{Word: "rule", Kind: KindNamed, Name: NameOptional, Body: Rule})
	add(Global, Entry{Word: "checkpoint", Kind: KindNamed, Name: NameOptional, Body: Rule})
	add(Global, Entry{Word: "subworkflow", Kind: KindNamed, Name: NameRequired, Body: Subworkflow})
	add(Global, Entry{Word: "module", Kind: KindNamed, Name: NameRequired, Body: Module})
	add(Global, Entry{Word: "use", Kind: KindUse, Body: Rule})
	for _, w := range []string{"onstart", "onsuccess", "onerror"} {
		add(Global, Entry{Word: w, Kind: KindCode})
	}
	sections(Global, AritySingle,
		"include", "workdir", "configfile", "pepfile", "pepschema", "report", "ruleorder",
		"singularity", "container", "containerized", "conda")
	sections(Global, ArityPositional, "localrules", "envvars", "inputflags", "outputflags")
	sections(Global, ArityMixed, "wildcard_constraints", "scattergather")

	sections(Rule, AritySingle,
		"benchmark", "message", "shell", "script", "wrapper", "cwl", "notebook", "conda",
		"singularity", "container", "containerized", "version", "priority", "threads",
		"shadow", "group", "cache", "handover", "default_target", "retries", "localrule",
		"name", "template_engine")
	sections(Rule, ArityPositional, "envmodules")
	sections(Rule, ArityMixed, "input", "output", "params", "log", "resources", "wildcard_constraints")
	add(Rule, Entry{Word: "run", Kind: KindCode})

	sections(Subworkflow, AritySingle, "workdir", "snakefile", "configfile")

	sections(Module, AritySingle, "name", "snakefile", "config", "skip_validation",
		"meta_wrapper", "replace_prefix", "prefix")
}
