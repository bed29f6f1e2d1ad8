// @title           recipe-manager API
// @version         1.0
// @description     CRUD API for recipes: name, ingredients, instructions and prep time in minutes.
// @BasePath        /api
package api
