package harness

import "fmt"

// JavaScript has no keyword arguments, so mapping-shaped inputs are matched
// to the entry point's parameter names parsed from its source text.

const jsPrelude = `
const __harnessInput = JSON.parse(require('fs').readFileSync(0, 'utf-8'));

function __harnessParamNames(fn) {
    const src = fn.toString().replace(/\/\*[\s\S]*?\*\//g, '');
    const match = src.match(/\(([^)]*)\)/);
    if (!match) return [];
    return match[1]
        .split(',')
        .map((p) => p.trim().split('=')[0].trim())
        .filter(Boolean);
}

function __harnessInvoke(fn, self, input) {
    if (Array.isArray(input)) {
        return fn.apply(self, input);
    }
    if (input !== null && typeof input === 'object') {
        return fn.apply(self, __harnessParamNames(fn).map((name) => input[name]));
    }
    return fn.call(self, input);
}
`

const jsClassTemplate = `%s
%s
try {
    const solution = new Solution();
    let methodName = %q;
    if (!methodName) {
        methodName = Object.getOwnPropertyNames(Object.getPrototypeOf(solution))
            .filter((m) => m !== 'constructor' && !m.startsWith('_') && typeof solution[m] === 'function')[0];
    }
    if (!methodName || typeof solution[methodName] !== 'function') {
        throw new Error('no public method found on Solution');
    }
    console.log(JSON.stringify(__harnessInvoke(solution[methodName], solution, __harnessInput)));
} catch (e) {
    console.log(JSON.stringify({error: e.message}));
    process.exit(1);
}
`

const jsFunctionTemplate = `%s
%s
try {
    const __harnessFn = %s;
    if (typeof __harnessFn !== 'function') {
        throw new Error('entry point function not found');
    }
    console.log(JSON.stringify(__harnessInvoke(__harnessFn, null, __harnessInput)));
} catch (e) {
    console.log(JSON.stringify({error: e.message}));
    process.exit(1);
}
`

func wrapJavaScriptClass(source, methodName string) string {
	if !identifier.MatchString(methodName) {
		methodName = ""
	}
	return fmt.Sprintf(jsClassTemplate, source, jsPrelude, methodName)
}

func wrapJavaScriptFunction(source, funcName string) string {
	// A missing or invalid entry name still yields a syntactically valid
	// program that fails at run time with a graded error.
	ref := "undefined"
	if identifier.MatchString(funcName) {
		ref = fmt.Sprintf("typeof %s === 'function' ? %s : undefined", funcName, funcName)
	}
	return fmt.Sprintf(jsFunctionTemplate, source, jsPrelude, ref)
}
