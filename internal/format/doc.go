// Package format prints a classified snakefile in canonical form.
//
// Назначение: печать дерева блоков; код хоста передаётся внешнему движку
// (internal/engine), ключевые блоки и секции печатаются по фиксированным правилам.
// Не делает: разбора, склейки итогового файла (internal/reassemble) и IO.
// Зависимости: internal/block, internal/engine, internal/lexer (строковые литералы).
package format
