package harness

import "fmt"

// Argument dispatch convention shared by both Python templates: a JSON
// object is passed as keyword arguments, a JSON array is unpacked
// positionally, anything else is passed as the single argument.

const pythonClassTemplate = `import json
import sys

%s

if __name__ == "__main__":
    try:
        test_data = json.loads(sys.stdin.read().strip())
        solution = Solution()
        method_name = %q
        if not method_name:
            candidates = [m for m in dir(solution)
                          if not m.startswith('_') and callable(getattr(solution, m))]
            if not candidates:
                raise AttributeError("no public method found on Solution")
            method_name = candidates[0]
        method = getattr(solution, method_name)
        if isinstance(test_data, dict):
            result = method(**test_data)
        elif isinstance(test_data, list):
            result = method(*test_data)
        else:
            result = method(test_data)
        print(json.dumps(result))
    except Exception as e:
        print(json.dumps({"error": str(e)}))
        sys.exit(1)
`

const pythonFunctionTemplate = `import json
import sys

%s

if __name__ == "__main__":
    try:
        test_data = json.loads(sys.stdin.read().strip())
        name = %q
        if name not in globals():
            raise NameError("entry point function not found")
        func = globals()[name]
        if isinstance(test_data, dict):
            result = func(**test_data)
        elif isinstance(test_data, list):
            result = func(*test_data)
        else:
            result = func(test_data)
        print(json.dumps(result))
    except Exception as e:
        print(json.dumps({"error": str(e)}))
        sys.exit(1)
`

func wrapPythonClass(source, methodName string) string {
	if !identifier.MatchString(methodName) {
		methodName = ""
	}
	return fmt.Sprintf(pythonClassTemplate, source, methodName)
}

func wrapPythonFunction(source, funcName string) string {
	return fmt.Sprintf(pythonFunctionTemplate, source, funcName)
}
