package analyzing

import "fmt"

// ParseError indica que a saída do modelo não pôde ser interpretada como o
// JSON esperado. É fatal para a execução guiada por modelo corrente; o
// chamador decide o fallback.
type ParseError struct {
	Label  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Failed to parse %s: %s", e.Label, e.Reason)
}

// UnknownToolError indica despacho para uma ferramenta fora do catálogo.
// No nível do registry é um erro sinalizado; o loop do agente trata a escolha
// de uma ferramenta desconhecida pelo modelo como evento recuperável.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("ferramenta desconhecida: %q", e.Name)
}

// InvalidArgumentsError indica argumentos obrigatórios ausentes ou malformados
// na chamada de uma ferramenta registrada
type InvalidArgumentsError struct {
	Tool   string
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("argumentos inválidos para %s: %s", e.Tool, e.Reason)
}

// ValidationError indica violação do contrato estrutural da FinalResponse.
// A mensagem identifica exatamente a cláusula violada.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
